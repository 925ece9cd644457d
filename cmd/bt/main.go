// Package main is the entry point for the bt CLI client.
package main

import (
	"github.com/donaldgifford/bargain-tracker/cmd/bt/cmd"
)

func main() {
	cmd.Execute()
}
