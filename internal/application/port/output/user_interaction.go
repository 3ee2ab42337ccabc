package output

import (
	"context"

	"gui-agent/internal/domain/entity"
)

// RoundObserver renders agent progress. Implementations must not block the loop.
type RoundObserver interface {
	ShowRound(ctx context.Context, round, maxRounds int)
	ShowThinking(ctx context.Context, thought string)
	ShowAction(ctx context.Context, action entity.Action)
	ShowResult(ctx context.Context, action entity.Action, result *entity.ExecutionResult, err error)
	ShowDropped(ctx context.Context, err error)
}
