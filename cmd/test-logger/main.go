package main

import (
	"errors"
	"fmt"

	"github.com/wonny/foresight/pkg/config"
	"github.com/wonny/foresight/pkg/logger"
)

func main() {
	fmt.Println("=== Foresight Logger Test ===")

	// Test 1: JSON Format (Production)
	fmt.Println("1. JSON Format (Production)")
	fmt.Println("--------------------------------")
	testJSONFormat()
	fmt.Println()

	// Test 2: Console Format (Development)
	fmt.Println("2. Console Format (Development)")
	fmt.Println("--------------------------------")
	testConsoleFormat()
	fmt.Println()

	// Test 3: Structured Logging
	fmt.Println("3. Structured Logging with Fields")
	fmt.Println("--------------------------------")
	testStructuredLogging()
	fmt.Println()

	// Test 4: Error Logging
	fmt.Println("4. Error Logging")
	fmt.Println("--------------------------------")
	testErrorLogging()
	fmt.Println()

	fmt.Println("✅ All logger tests completed!")
}

func testJSONFormat() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)
	log.Info("Pipeline started")
	log.Warn("Validation split shorter than batch size")
	log.Error("Failed to write report artifact")
}

func testConsoleFormat() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "debug",
		LogFormat: "console",
	}

	log := logger.New(cfg)
	log.Debug("Debugging training loop")
	log.Info("Dataset loaded")
	log.Warn("Trim removed trailing samples")
}

func testStructuredLogging() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	// Single field
	modelLog := log.WithField("model", "Linear")
	modelLog.Info("Training started")

	// Multiple fields
	epochLog := log.WithFields(map[string]interface{}{
		"model":    "MLP",
		"epoch":    42,
		"loss":     0.0031,
		"val_loss": 0.0047,
	})
	epochLog.Info("Epoch completed")

	// Chained fields
	log.WithField("component", "partitioner").
		WithField("split", "train").
		Info("Shuffle applied")
}

func testErrorLogging() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	// Simple error
	err := errors.New("length mismatch")
	log.WithError(err).Error("Failed to load dataset")

	// Error with context
	log.WithError(err).
		WithFields(map[string]interface{}{
			"split":    "test",
			"features": 120,
			"labels":   118,
		}).
		Error("Dataset rejected")
}
