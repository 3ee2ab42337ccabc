package output

import (
	"context"

	"gui-agent/internal/domain/entity"
)

// Operator is the capability every automation target exposes. Callers rely on
// nothing else about the backend.
type Operator interface {
	Screenshot(ctx context.Context) (*entity.Screenshot, error)
	Execute(ctx context.Context, params ExecuteParams) (*entity.ExecutionResult, error)
}

// ExecuteParams carries one mapped action together with the geometry it was mapped in.
type ExecuteParams struct {
	Action     entity.Action
	Prediction string
	Screen     entity.ScreenContext
	Factors    entity.Factors
}

// OperatorFactory resolves the operator for a session target. It is called
// once per session.
type OperatorFactory interface {
	ForTarget(ctx context.Context, target entity.Target) (Operator, error)
}
