package main

import (
	"os"

	"gui-agent/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
