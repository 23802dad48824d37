package main

import (
	"os"

	"github.com/mczabca-boop/tinyclaw/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
