package main

import (
	"os"

	"github.com/pakarguru/modulajar/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
