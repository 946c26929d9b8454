package enums

import "fmt"

// DevicePlatform identifies the OS a push token was issued for.
type DevicePlatform string

const (
	DevicePlatformIOS     DevicePlatform = "ios"
	DevicePlatformAndroid DevicePlatform = "android"
	DevicePlatformWeb     DevicePlatform = "web"
)

var validDevicePlatforms = []DevicePlatform{
	DevicePlatformIOS,
	DevicePlatformAndroid,
	DevicePlatformWeb,
}

// IsValid checks whether the platform matches the canonical enum.
func (p DevicePlatform) IsValid() bool {
	for _, candidate := range validDevicePlatforms {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseDevicePlatform converts raw strings into DevicePlatform.
func ParseDevicePlatform(value string) (DevicePlatform, error) {
	for _, candidate := range validDevicePlatforms {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid device platform %q", value)
}
