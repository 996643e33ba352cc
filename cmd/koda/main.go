// Package main provides the entry point for the koda CLI.
package main

import (
	"fmt"
	"os"

	"github.com/koda-agent/koda/cmd/koda/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
