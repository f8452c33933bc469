package main

import (
	"os"

	"github.com/pmarg/reseat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
