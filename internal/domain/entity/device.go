package entity

import "strings"

type DeviceState string

const (
	DeviceOnline       DeviceState = "device"
	DeviceOffline      DeviceState = "offline"
	DeviceUnauthorized DeviceState = "unauthorized"
)

type Device struct {
	ID    string
	State DeviceState
	Model string
}

func (d Device) Online() bool {
	return d.State == DeviceOnline
}

// TargetLocal selects the local display.
const TargetLocal = "local"

// Target identifies what a session drives: the local display or one device.
type Target struct {
	DeviceID string
}

func ParseTarget(s string) Target {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, TargetLocal) {
		return Target{}
	}
	return Target{DeviceID: s}
}

func (t Target) IsLocal() bool {
	return t.DeviceID == ""
}

func (t Target) String() string {
	if t.IsLocal() {
		return TargetLocal
	}
	return t.DeviceID
}
