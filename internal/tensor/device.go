package tensor

import "fmt"

// Device represents the compute device kind a buffer resides on.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	CUDA
	Vulkan
	Metal
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case Vulkan:
		return "Vulkan"
	case Metal:
		return "Metal"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// DeviceID addresses one device shard: a device kind plus the ordinal
// of the device among devices of that kind.
type DeviceID struct {
	Kind  Device
	Index int
}

// String returns the id in "kind:index" form, e.g. "CPU:0".
func (id DeviceID) String() string {
	return fmt.Sprintf("%s:%d", id.Kind, id.Index)
}
