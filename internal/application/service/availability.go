package service

import (
	"context"
	"time"

	"gui-agent/internal/application/port/input"
	"gui-agent/internal/application/port/output"
)

var _ input.AvailabilityChecker = (*AvailabilityChecker)(nil)

// AvailabilityChecker refreshes the device registry from the ADB bridge.
// It never fails: errors are logged and reported as unavailable.
type AvailabilityChecker struct {
	bridge output.DeviceBridge
	writer *DeviceRegistryWriter
	logger output.LoggerPort
}

func NewAvailabilityChecker(bridge output.DeviceBridge, writer *DeviceRegistryWriter, logger output.LoggerPort) *AvailabilityChecker {
	return &AvailabilityChecker{bridge: bridge, writer: writer, logger: logger}
}

func (c *AvailabilityChecker) Check(ctx context.Context) bool {
	c.logger.Info("Checking ADB availability...")

	devices, err := c.bridge.Devices(ctx)
	if err != nil {
		c.logger.Error("Error checking ADB availability", "error", err)
		c.writer.MarkUnavailable()
		return false
	}

	available := c.writer.Replace(devices)
	c.logger.Info("ADB availability", "available", available, "devices", len(devices))
	return available
}

// Watch checks once immediately and then every interval until ctx is done.
func (c *AvailabilityChecker) Watch(ctx context.Context, interval time.Duration) {
	c.Check(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}
