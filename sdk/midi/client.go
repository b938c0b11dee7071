// Package midi is the entry point for live MIDI devices. It picks a device
// backend for the running platform, or the one named with
// contracts.WithBackend, and returns it as a contracts.ClientMIDI.
package midi

import (
	"strconv"

	"github.com/leandrodaf/midikit/sdk/contracts"
)

// NewMIDIClient creates a new MIDI client with the specified options.
// It applies default options and initializes the backend; no device is
// selected or opened yet.
func NewMIDIClient(opts ...contracts.Option) (contracts.ClientMIDI, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	client, err := NewClient(&options)
	if err != nil {
		return nil, err
	}

	return client, nil
}

// NewOutput creates a client and opens one of its outputs. port is either a
// device index or a name resolved with contracts.FindDevice; an empty port
// opens the first device. The client is stopped again when the output
// cannot be opened.
func NewOutput(port string, opts ...contracts.Option) (contracts.ClientMIDI, error) {
	client, err := NewMIDIClient(opts...)
	if err != nil {
		return nil, err
	}

	switch index, convErr := strconv.Atoi(port); {
	case port == "":
		err = client.OpenOutput(0)
	case convErr == nil:
		err = client.OpenOutput(index)
	default:
		err = client.OpenOutputByName(port)
	}
	if err != nil {
		_ = client.Stop()
		return nil, err
	}
	return client, nil
}
