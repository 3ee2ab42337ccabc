package prompts

import (
	"strings"
	"testing"

	"gui-agent/internal/domain/entity"
	"gui-agent/internal/usecase/actionparser"
)

func TestGenerateSystemPrompt(t *testing.T) {
	prompt, err := GenerateSystemPrompt(KindComputer, SystemPromptData{
		Instruction:  "Open the settings page",
		FactorWidth:  1000,
		FactorHeight: 1000,
	})
	if err != nil {
		t.Fatalf("GenerateSystemPrompt failed: %v", err)
	}

	for _, want := range []string{
		"## User Instruction\nOpen the settings page",
		"Use English in `Thought` part.",
		"1000x1000 grid",
		"left_double(",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "press_home") {
		t.Error("computer prompt should not offer mobile actions")
	}
}

func TestGenerateSystemPrompt_Mobile(t *testing.T) {
	prompt, err := GenerateSystemPrompt(KindMobile, SystemPromptData{Instruction: "x", Language: "zh"})
	if err != nil {
		t.Fatalf("GenerateSystemPrompt failed: %v", err)
	}
	if !strings.Contains(prompt, "press_home()") || !strings.Contains(prompt, "Use Chinese") {
		t.Errorf("unexpected mobile prompt:\n%s", prompt)
	}
}

func TestGenerateSystemPrompt_UnknownKind(t *testing.T) {
	if _, err := GenerateSystemPrompt("tv", SystemPromptData{}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestKindFor(t *testing.T) {
	if KindFor(entity.ParseTarget("local")) != KindComputer {
		t.Error("local target should use the computer prompt")
	}
	if KindFor(entity.ParseTarget("emulator-5554")) != KindMobile {
		t.Error("device target should use the mobile prompt")
	}
}

// Every action listed in the prompts must be one the parser accepts.
func TestPromptActionsParse(t *testing.T) {
	for _, base := range []string{ComputerPrompt, MobilePrompt} {
		section := base[strings.Index(base, "## Action Space"):strings.Index(base, "## Note")]
		for _, line := range strings.Split(section, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "##") {
				continue
			}
			if i := strings.Index(line, " #"); i > 0 {
				line = line[:i]
			}
			pred, err := actionparser.Parse("Action: " + line)
			if err != nil {
				t.Errorf("Parse(%q) failed: %v", line, err)
				continue
			}
			if len(pred.Actions) != 1 {
				t.Errorf("Parse(%q) returned %d actions", line, len(pred.Actions))
			}
		}
	}
}
