// cmd/main.go
package main

import (
	"os"

	"go_4_learn_progress/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
