package main

import (
	"fmt"
	"os"

	"github.com/cloudchase/bitrun/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error occurred while running command: %v\n", err)
		os.Exit(cmd.ExitCode(err))
	}
}
