package prompts

import (
	_ "embed"
)

//go:embed computer.txt
var ComputerPrompt string

//go:embed mobile.txt
var MobilePrompt string
