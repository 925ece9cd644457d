// Package main is the entry point for the bargain-tracker service.
package main

import (
	"os"

	"github.com/donaldgifford/bargain-tracker/cmd/bargain-tracker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
