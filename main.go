package main

import (
	"os"

	"github.com/avstrong/roombook/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
