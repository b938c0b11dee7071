package contracts

import (
	"fmt"
	"strings"
)

// Direction selects input (capture) or output (playback) devices.
type Direction int

const (
	// DirectionInput devices deliver MIDI messages to the host.
	DirectionInput Direction = iota
	// DirectionOutput devices receive MIDI messages from the host.
	DirectionOutput
)

func (d Direction) String() string {
	if d == DirectionOutput {
		return "output"
	}
	return "input"
}

// DeviceInfo contains information about a MIDI device.
type DeviceInfo struct {
	Index        int       // Position of the device in the backend's enumeration.
	Direction    Direction // Whether the device is an input or an output.
	Name         string    // Device name.
	Manufacturer string    // Device manufacturer.
	EntityName   string    // Name of the entity to which the device belongs.
}

// FindDevice returns the index of the device called name. An exact match wins;
// otherwise a single case-insensitive substring match is accepted.
func FindDevice(devices []DeviceInfo, name string) (int, error) {
	for _, d := range devices {
		if d.Name == name {
			return d.Index, nil
		}
	}
	found := -1
	needle := strings.ToLower(name)
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), needle) {
			if found >= 0 {
				return -1, fmt.Errorf("%w: %q matches more than one device", ErrInvalidMIDIDevice, name)
			}
			found = d.Index
		}
	}
	if found < 0 {
		return -1, fmt.Errorf("%w: no device named %q", ErrInvalidMIDIDevice, name)
	}
	return found, nil
}
