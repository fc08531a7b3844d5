package enums

import "fmt"

// DeviceStatus tracks the last reported connectivity of a display device.
type DeviceStatus string

const (
	DeviceStatusOnline  DeviceStatus = "online"
	DeviceStatusOffline DeviceStatus = "offline"
)

var validDeviceStatuses = []DeviceStatus{
	DeviceStatusOnline,
	DeviceStatusOffline,
}

// String returns the literal string for the status.
func (s DeviceStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is known.
func (s DeviceStatus) IsValid() bool {
	for _, candidate := range validDeviceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDeviceStatus converts raw input into a DeviceStatus.
func ParseDeviceStatus(value string) (DeviceStatus, error) {
	for _, candidate := range validDeviceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid device status %q", value)
}
