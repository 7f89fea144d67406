package main

import (
	"os"

	"github.com/harrison/doctest/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
