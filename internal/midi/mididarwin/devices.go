package mididarwin

import "github.com/leandrodaf/midikit/sdk/contracts"

// endpoint is the part of a CoreMIDI source or destination that describes it.
// Only sources expose their entity, so entityName is empty for destinations.
type endpoint interface {
	Name() string
	Manufacturer() string
}

func describe(index int, dir contracts.Direction, ep endpoint, entityName string) contracts.DeviceInfo {
	return contracts.DeviceInfo{
		Index:        index,
		Direction:    dir,
		Name:         ep.Name(),
		Manufacturer: ep.Manufacturer(),
		EntityName:   entityName,
	}
}
