package main

import (
	"os"

	"github.com/teamcutter/imgrip/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
