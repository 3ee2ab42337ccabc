package agentloop

import "gui-agent/internal/domain/entity"

type turn struct {
	screenshot string
	prediction string
}

// conversation is the per-run message history. Only the newest maxImages
// screenshots are sent; older turns keep their predictions.
type conversation struct {
	prompt    string
	turns     []turn
	maxImages int
}

func newConversation(prompt string, maxImages int) *conversation {
	return &conversation{prompt: prompt, maxImages: maxImages}
}

func (c *conversation) addScreenshot(dataURL string) {
	c.turns = append(c.turns, turn{screenshot: dataURL})
}

func (c *conversation) addPrediction(prediction string) {
	if len(c.turns) == 0 {
		return
	}
	c.turns[len(c.turns)-1].prediction = prediction
}

func (c *conversation) messages() []entity.Message {
	msgs := make([]entity.Message, 0, len(c.turns)*2+1)
	msgs = append(msgs, entity.Message{Role: entity.RoleUser, Content: c.prompt})

	firstImage := len(c.turns) - c.maxImages
	for i, t := range c.turns {
		if i >= firstImage {
			msgs = append(msgs, entity.Message{Role: entity.RoleUser, Images: []string{t.screenshot}})
		}
		if t.prediction != "" {
			msgs = append(msgs, entity.Message{Role: entity.RoleAssistant, Content: t.prediction})
		}
	}
	return msgs
}
