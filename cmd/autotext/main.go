package main

import (
	"os"

	"github.com/goliatone/go-autotext/cmd/autotext/commands"
	"github.com/goliatone/go-autotext/internal/logging"
)

func main() {
	err := commands.NewRootCmd().Execute()
	logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}
