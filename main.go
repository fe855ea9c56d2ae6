package main

import (
	"os"

	"github.com/gitguy/gitguy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
