package adb

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
)

var _ output.DeviceBridge = (*Bridge)(nil)

// Bridge talks to the adb server itself rather than to one device.
type Bridge struct {
	runner Runner
}

func NewBridge(runner Runner) *Bridge {
	return &Bridge{runner: runner}
}

func (b *Bridge) Devices(ctx context.Context) ([]entity.Device, error) {
	out, err := b.runner.Run(ctx, "devices", "-l")
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return ParseDevices(out), nil
}

// ParseDevices reads `adb devices -l` output. Daemon banners and the
// header line are ignored.
func ParseDevices(out []byte) []entity.Device {
	devices := []entity.Device{}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "List of devices") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		d := entity.Device{ID: fields[0], State: entity.DeviceState(fields[1])}
		for _, f := range fields[2:] {
			if v, ok := strings.CutPrefix(f, "model:"); ok {
				d.Model = v
			}
		}
		devices = append(devices, d)
	}
	return devices
}
