package input

import (
	"context"

	"gui-agent/internal/domain/entity"
)

type TaskExecutor interface {
	Run(ctx context.Context, instruction string) (*entity.RunResult, error)
}

// SessionRunner starts agent sessions against explicit targets.
type SessionRunner interface {
	Execute(ctx context.Context, target entity.Target, instruction string) (*entity.RunResult, error)
	ExecuteAll(ctx context.Context, targets []entity.Target, instruction string) ([]*entity.RunResult, error)
}

type AvailabilityChecker interface {
	Check(ctx context.Context) bool
}
