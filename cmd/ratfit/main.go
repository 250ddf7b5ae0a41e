package main

import (
	"os"

	"github.com/ratfit/ratfit/cmd/ratfit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
