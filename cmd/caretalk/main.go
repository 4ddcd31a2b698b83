package main

import (
	"os"

	"caretalk/cmd/caretalk/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
