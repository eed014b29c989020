package main

import (
	"fmt"
	"os"

	"github.com/teranos/obelisk/cmd/obelisk/commands"
	"github.com/teranos/obelisk/logger"
)

func main() {
	err := commands.NewRootCmd().Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, commands.FormatError(err))
		os.Exit(1)
	}
}
