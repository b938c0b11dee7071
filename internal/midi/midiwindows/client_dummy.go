//go:build !windows
// +build !windows

package midiwindows

import (
	"fmt"

	"github.com/leandrodaf/midikit/sdk/contracts"
	"github.com/leandrodaf/midikit/sdk/message"
)

type dummyMIDIClient struct {
	logger contracts.Logger
}

// NewMIDIClient initializes a dummy MIDI client for non-Windows systems.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("Using dummy MIDI client for non-Windows system")
	return &dummyMIDIClient{
		logger: options.Logger,
	}, nil
}

var errUnavailable = fmt.Errorf("%w: WinMM is not available on this platform", contracts.ErrDeviceUnavailable)

// ListDevices logs a warning and returns an error indicating that MIDI functionality is unavailable on this platform.
func (m *dummyMIDIClient) ListDevices(dir contracts.Direction) ([]contracts.DeviceInfo, error) {
	m.logger.Warn("ListDevices called on dummy MIDI client")
	return nil, errUnavailable
}

func (m *dummyMIDIClient) DeviceCount(dir contracts.Direction) (int, error) {
	return 0, errUnavailable
}

func (m *dummyMIDIClient) DeviceName(dir contracts.Direction, index int) (string, error) {
	return "", errUnavailable
}

// SelectDevice logs a warning and returns an error indicating that MIDI functionality is unavailable on this platform.
func (m *dummyMIDIClient) SelectDevice(deviceID int) error {
	m.logger.Warn("SelectDevice called on dummy MIDI client")
	return errUnavailable
}

// StartCapture logs a warning indicating that StartCapture was called on the dummy MIDI client.
func (m *dummyMIDIClient) StartCapture(eventChannel chan message.Message) {
	m.logger.Warn("StartCapture called on dummy MIDI client")
}

func (m *dummyMIDIClient) OpenOutput(index int) error { return errUnavailable }

func (m *dummyMIDIClient) OpenOutputByName(name string) error { return errUnavailable }

func (m *dummyMIDIClient) Send(data []byte) error { return contracts.ErrOutputNotOpen }

func (m *dummyMIDIClient) CloseOutput() error { return contracts.ErrOutputNotOpen }

// Stop logs a warning indicating that Stop was called on the dummy MIDI client.
func (m *dummyMIDIClient) Stop() error {
	m.logger.Warn("Stop called on dummy MIDI client")
	return nil
}
