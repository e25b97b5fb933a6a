package main

import (
	"os"

	"github.com/rustyeddy/ratrace/cmd/ratrace/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
