package operator

import (
	"context"
	"sync"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
)

var _ output.Operator = (*Remote)(nil)

// Remote wraps a base device operator. Every call is forwarded exactly once
// and the base result or error is returned as is.
type Remote struct {
	mu       sync.Mutex
	base     output.Operator
	deviceID string
	logger   output.LoggerPort
}

func NewRemote(base output.Operator, deviceID string, logger output.LoggerPort) *Remote {
	return &Remote{
		base:     base,
		deviceID: deviceID,
		logger:   logger.WithField("device", deviceID),
	}
}

func (r *Remote) DeviceID() string {
	return r.deviceID
}

func (r *Remote) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	shot, err := r.base.Screenshot(ctx)
	if err != nil {
		r.logger.Warn("screenshot failed", "error", err)
		return shot, err
	}
	if shot != nil {
		r.logger.Debug("screenshot taken", "width", shot.Width, "height", shot.Height)
	}
	return shot, nil
}

func (r *Remote) Execute(ctx context.Context, params output.ExecuteParams) (*entity.ExecutionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Info("execute", "action", params.Action.Type, "inputs", params.Action.Inputs)
	result, err := r.base.Execute(ctx, params)
	switch {
	case err != nil:
		r.logger.Warn("execute failed", "action", params.Action.Type, "error", err)
	case result != nil && !result.Success:
		r.logger.Warn("execute unsuccessful", "action", params.Action.Type, "message", result.Message)
	}
	return result, err
}
