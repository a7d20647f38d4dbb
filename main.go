package main

import (
	"os"

	"github.com/veldt-labs/ragkit/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
