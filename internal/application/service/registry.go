package service

import (
	"sort"
	"sync"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
)

var _ output.DeviceRegistry = (*DeviceRegistry)(nil)

type deviceState struct {
	mu        sync.RWMutex
	available bool
	devices   map[string]entity.Device
}

// DeviceRegistry is the shared, read-mostly view of ADB device availability.
type DeviceRegistry struct {
	state *deviceState
}

// DeviceRegistryWriter is the only handle that can change a registry.
type DeviceRegistryWriter struct {
	state *deviceState
}

// NewDeviceRegistry returns a registry and its single writer.
func NewDeviceRegistry() (*DeviceRegistry, *DeviceRegistryWriter) {
	s := &deviceState{devices: make(map[string]entity.Device)}
	return &DeviceRegistry{state: s}, &DeviceRegistryWriter{state: s}
}

func (r *DeviceRegistry) Available() bool {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()
	return r.state.available
}

func (r *DeviceRegistry) Devices() []entity.Device {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	result := make([]entity.Device, 0, len(r.state.devices))
	for _, d := range r.state.devices {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (r *DeviceRegistry) Lookup(id string) (entity.Device, bool) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()
	d, ok := r.state.devices[id]
	return d, ok
}

// Replace swaps the device set. Availability means at least one online device.
func (w *DeviceRegistryWriter) Replace(devices []entity.Device) bool {
	next := make(map[string]entity.Device, len(devices))
	available := false
	for _, d := range devices {
		next[d.ID] = d
		if d.Online() {
			available = true
		}
	}

	w.state.mu.Lock()
	defer w.state.mu.Unlock()
	w.state.devices = next
	w.state.available = available
	return available
}

// MarkUnavailable clears the device set.
func (w *DeviceRegistryWriter) MarkUnavailable() {
	w.state.mu.Lock()
	defer w.state.mu.Unlock()
	w.state.devices = make(map[string]entity.Device)
	w.state.available = false
}
