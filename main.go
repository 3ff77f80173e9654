package main

import (
	"os"

	"github.com/ordo-continuum/dossier/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
