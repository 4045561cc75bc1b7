package main

import (
	"os"

	"github.com/petrijr/proctree/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := cli.NewRootCmd(version + " (" + commit + ")")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
