package buildtemplate

// CleaningPolicy decides how often the CI job starts from a clean build.
type CleaningPolicy int

// Cleaning policies, numbered as the CI server expects them.
const (
	CleaningPolicyNever CleaningPolicy = iota
	CleaningPolicyAlways
	CleaningPolicyOnceADay
	CleaningPolicyOnceAWeek
)

func (p CleaningPolicy) valid() bool {
	return p >= CleaningPolicyNever && p <= CleaningPolicyOnceAWeek
}

func (p CleaningPolicy) String() string {
	switch p {
	case CleaningPolicyNever:
		return "never"
	case CleaningPolicyAlways:
		return "always"
	case CleaningPolicyOnceADay:
		return "once-a-day"
	case CleaningPolicyOnceAWeek:
		return "once-a-week"
	default:
		return "unknown"
	}
}

// DeviceFilter selects which devices integrations run tests on.
type DeviceFilter int

// Device filters, numbered as the CI server expects them.
const (
	DeviceFilterAllAvailableDevicesAndSimulators DeviceFilter = iota
	DeviceFilterAllDevices
	DeviceFilterAllSimulators
	DeviceFilterSelectedDevicesAndSimulators
)

func (f DeviceFilter) valid() bool {
	return f >= DeviceFilterAllAvailableDevicesAndSimulators && f <= DeviceFilterSelectedDevicesAndSimulators
}

func (f DeviceFilter) String() string {
	switch f {
	case DeviceFilterAllAvailableDevicesAndSimulators:
		return "all-available-devices-and-simulators"
	case DeviceFilterAllDevices:
		return "all-devices"
	case DeviceFilterAllSimulators:
		return "all-simulators"
	case DeviceFilterSelectedDevicesAndSimulators:
		return "selected-devices-and-simulators"
	default:
		return "unknown"
	}
}

// PlatformType is the platform a template builds for.
type PlatformType string

// Known platforms.
const (
	PlatformIOS     PlatformType = "com.apple.platform.iphoneos"
	PlatformOSX     PlatformType = "com.apple.platform.macosx"
	PlatformWatchOS PlatformType = "com.apple.platform.watchos"
	PlatformTVOS    PlatformType = "com.apple.platform.appletvos"
)

// ParsePlatformType returns the platform for s, or false if s is not a known platform.
func ParsePlatformType(s string) (PlatformType, bool) {
	switch p := PlatformType(s); p {
	case PlatformIOS, PlatformOSX, PlatformWatchOS, PlatformTVOS:
		return p, true
	default:
		return "", false
	}
}
