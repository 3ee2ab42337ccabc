package output

import (
	"context"

	"gui-agent/internal/domain/entity"
)

// ModelPort invokes the vision-language model and returns its raw prediction text.
type ModelPort interface {
	Invoke(ctx context.Context, req InvokeRequest) (*InvokeResponse, error)
	Name() string
}

type InvokeRequest struct {
	Messages []entity.Message
}

type InvokeResponse struct {
	Prediction string
	CostMs     int64
}
