package prompts

import (
	"bytes"
	"fmt"
	"text/template"

	"gui-agent/internal/domain/entity"
)

type Kind string

const (
	KindComputer Kind = "computer"
	KindMobile   Kind = "mobile"
)

// KindFor picks the action space matching the session target.
func KindFor(target entity.Target) Kind {
	if target.IsLocal() {
		return KindComputer
	}
	return KindMobile
}

type SystemPromptData struct {
	Instruction  string
	Language     string
	FactorWidth  int
	FactorHeight int
}

func GenerateSystemPrompt(kind Kind, data SystemPromptData) (string, error) {
	var base string
	switch kind {
	case KindComputer:
		base = ComputerPrompt
	case KindMobile:
		base = MobilePrompt
	default:
		return "", fmt.Errorf("unknown prompt kind %q", kind)
	}

	if data.Language == "" || data.Language == "en" {
		data.Language = "English"
	} else if data.Language == "zh" {
		data.Language = "Chinese"
	}

	tmpl, err := template.New(string(kind)).Option("missingkey=error").Parse(base)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
