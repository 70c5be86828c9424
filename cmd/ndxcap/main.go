package main

import (
	"os"

	"github.com/wonny/ndxcap/cmd/ndxcap/commands"
)

// main is the entry point for the ndxcap CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
