package operator

import (
	"context"
	"fmt"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
	"gui-agent/internal/infrastructure/adb"
)

var _ output.OperatorFactory = (*Factory)(nil)

// Factory picks the operator for a session target. Selection happens once per
// session; the returned operator is not swapped afterwards.
type Factory struct {
	newDesktop func(ctx context.Context) (Desktop, error)
	localOpts  LocalOptions
	runner     adb.Runner
	adbOpts    adb.Options
	registry   output.DeviceRegistry
	logger     output.LoggerPort
}

func NewFactory(
	newDesktop func(ctx context.Context) (Desktop, error),
	localOpts LocalOptions,
	runner adb.Runner,
	adbOpts adb.Options,
	registry output.DeviceRegistry,
	logger output.LoggerPort,
) *Factory {
	return &Factory{
		newDesktop: newDesktop,
		localOpts:  localOpts,
		runner:     runner,
		adbOpts:    adbOpts,
		registry:   registry,
		logger:     logger,
	}
}

func (f *Factory) ForTarget(ctx context.Context, target entity.Target) (output.Operator, error) {
	if target.IsLocal() {
		if f.newDesktop == nil {
			return nil, fmt.Errorf("local display is not available")
		}
		desktop, err := f.newDesktop(ctx)
		if err != nil {
			return nil, fmt.Errorf("open local display: %w", err)
		}
		return NewLocal(desktop, f.localOpts, f.logger), nil
	}

	if f.runner == nil {
		return nil, fmt.Errorf("adb is not configured")
	}
	if f.registry != nil {
		device, ok := f.registry.Lookup(target.DeviceID)
		if !ok {
			return nil, fmt.Errorf("device %s is not connected", target.DeviceID)
		}
		if !device.Online() {
			return nil, fmt.Errorf("device %s is %s", target.DeviceID, device.State)
		}
	}

	base := adb.NewOperator(f.runner, target.DeviceID, f.adbOpts, f.logger)
	return NewRemote(base, target.DeviceID, f.logger), nil
}
