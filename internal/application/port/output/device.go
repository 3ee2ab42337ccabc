package output

import (
	"context"

	"gui-agent/internal/domain/entity"
)

// DeviceBridge lists devices reachable over the remote command channel.
type DeviceBridge interface {
	Devices(ctx context.Context) ([]entity.Device, error)
}

// DeviceRegistry is the read side of the shared device-availability state.
type DeviceRegistry interface {
	Available() bool
	Devices() []entity.Device
	Lookup(id string) (entity.Device, bool)
}
