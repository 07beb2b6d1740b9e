package main

import (
	"os"

	"github.com/minimalprod/erpctl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
