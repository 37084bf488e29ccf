package contracts

import (
	"fmt"
	"strings"
)

// ParamKind 하이퍼파라미터 값 타입
type ParamKind string

const (
	ParamInt     ParamKind = "int"
	ParamFloat   ParamKind = "float"
	ParamIntList ParamKind = "int_list"
	ParamString  ParamKind = "string"
)

// ParamValue is a tagged hyperparameter value
type ParamValue struct {
	Kind  ParamKind `json:"kind"`
	Int   int       `json:"int,omitempty"`
	Float float64   `json:"float,omitempty"`
	Ints  []int     `json:"ints,omitempty"`
	Str   string    `json:"str,omitempty"`
}

func (v ParamValue) String() string {
	switch v.Kind {
	case ParamInt:
		return fmt.Sprintf("%d", v.Int)
	case ParamFloat:
		return fmt.Sprintf("%g", v.Float)
	case ParamIntList:
		parts := make([]string, len(v.Ints))
		for i, n := range v.Ints {
			parts[i] = fmt.Sprintf("%d", n)
		}
		return strings.Join(parts, ":")
	default:
		return v.Str
	}
}

// IntValue는 int 파라미터 생성 헬퍼
func IntValue(n int) ParamValue { return ParamValue{Kind: ParamInt, Int: n} }

// FloatValue는 float 파라미터 생성 헬퍼
func FloatValue(f float64) ParamValue { return ParamValue{Kind: ParamFloat, Float: f} }

// IntListValue는 int 리스트 파라미터 생성 헬퍼
func IntListValue(ns ...int) ParamValue { return ParamValue{Kind: ParamIntList, Ints: ns} }

// StringValue는 문자열 파라미터 생성 헬퍼
func StringValue(s string) ParamValue { return ParamValue{Kind: ParamString, Str: s} }

// Params holds model hyperparameters by key
type Params map[string]ParamValue

// Int returns the int value for key, or def when absent.
// float로 파싱된 정수값도 허용한다.
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch v.Kind {
	case ParamInt:
		return v.Int
	case ParamFloat:
		return int(v.Float)
	default:
		return def
	}
}

// Float returns the float value for key, or def when absent
func (p Params) Float(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch v.Kind {
	case ParamFloat:
		return v.Float
	case ParamInt:
		return float64(v.Int)
	default:
		return def
	}
}

// Ints returns the int-list value for key, or def when absent
func (p Params) Ints(key string, def []int) []int {
	v, ok := p[key]
	if !ok || v.Kind != ParamIntList {
		return def
	}
	return v.Ints
}

// Str returns the string value for key, or def when absent
func (p Params) Str(key string, def string) string {
	v, ok := p[key]
	if !ok || v.Kind != ParamString {
		return def
	}
	return v.Str
}

// ParamSchema lists the hyperparameter keys a model accepts and the
// value kinds allowed for each key
type ParamSchema map[string][]ParamKind
