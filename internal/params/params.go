package params

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wonny/foresight/internal/contracts"
)

// ValidationError 스키마 검증 실패 (프로그램 중단)
type ValidationError struct {
	Key     string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("param %s: %s", e.Key, e.Message)
}

// ParseArgs parses a "key1=value1,key2=value2" list into tagged values.
// Per value: integer, else float, else colon-separated integer list,
// else raw string. 파싱 불가한 값은 에러가 아니라 문자열로 남는다.
func ParseArgs(raw string) (contracts.Params, error) {
	args := make(contracts.Params)
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid argument %q: expected key=value", pair)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid argument %q: empty key", pair)
		}
		args[key] = parseValue(strings.TrimSpace(value))
	}

	return args, nil
}

// parseValue applies the int → float → int-list → string fallback chain
func parseValue(s string) contracts.ParamValue {
	if n, err := strconv.Atoi(s); err == nil {
		return contracts.IntValue(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return floatValue(f)
	}
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		ints := make([]int, 0, len(parts))
		ok := true
		for _, part := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				ok = false
				break
			}
			ints = append(ints, n)
		}
		if ok {
			return contracts.IntListValue(ints...)
		}
	}
	return contracts.StringValue(s)
}

// floatValue coerces integral floats to int so "batch=16.0" still
// satisfies an int-only schema
func floatValue(f float64) contracts.ParamValue {
	if f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32 {
		return contracts.IntValue(int(f))
	}
	return contracts.FloatValue(f)
}

// paramFile is the YAML shape of a hyperparameter file
type paramFile struct {
	Args map[string]interface{} `yaml:"args"`
}

// LoadFile reads hyperparameters from a YAML file.
// KnownFields(true)로 오타/미사용 필드는 즉시 실패한다.
func LoadFile(path string) (contracts.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read params file: %w", err)
	}

	var file paramFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse params file %s: %w", path, err)
	}

	args := make(contracts.Params, len(file.Args))
	for key, value := range file.Args {
		switch v := value.(type) {
		case int:
			args[key] = contracts.IntValue(v)
		case float64:
			args[key] = floatValue(v)
		case string:
			args[key] = parseValue(v)
		default:
			return nil, fmt.Errorf("parse params file %s: key %s has unsupported type %T", path, key, value)
		}
	}

	return args, nil
}

// Merge overlays b onto a; b wins on key conflicts
func Merge(a, b contracts.Params) contracts.Params {
	out := make(contracts.Params, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Validate checks args against the given schemas (one per selected
// model, plus any pipeline-level schema). Unknown keys are rejected
// rather than silently passed through; a key is known when at least one
// schema accepts it with the given kind.
func Validate(args contracts.Params, schemas ...contracts.ParamSchema) error {
	for key, value := range args {
		known := false
		kindOK := false
		for _, schema := range schemas {
			kinds, ok := schema[key]
			if !ok {
				continue
			}
			known = true
			for _, k := range kinds {
				if k == value.Kind {
					kindOK = true
					break
				}
			}
		}

		if !known {
			return ValidationError{Key: key, Message: "unknown hyperparameter"}
		}
		if !kindOK {
			return ValidationError{
				Key:     key,
				Message: fmt.Sprintf("value %q has unsupported kind %s", value.String(), value.Kind),
			}
		}
	}

	return nil
}
