package main

import (
	"os"

	"barter/cmd/barter/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
