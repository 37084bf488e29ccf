package main

import (
	"os"

	"github.com/wonny/foresight/cmd/foresight/commands"
)

// main is the entry point for the Foresight CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/foresight [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
