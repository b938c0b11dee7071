//go:build !darwin
// +build !darwin

package mididarwin

import (
	"fmt"

	"github.com/leandrodaf/midikit/sdk/contracts"
	"github.com/leandrodaf/midikit/sdk/message"
)

type DummyMIDIClient struct {
	logger contracts.Logger
}

func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("Using dummy MIDI client for non-macOS system")
	return &DummyMIDIClient{
		logger: options.Logger,
	}, nil
}

func unavailable() error {
	return fmt.Errorf("%w: CoreMIDI is not available on this platform", contracts.ErrDeviceUnavailable)
}

func (m *DummyMIDIClient) ListDevices(dir contracts.Direction) ([]contracts.DeviceInfo, error) {
	m.logger.Warn("ListDevices called on dummy MIDI client")
	return nil, unavailable()
}

func (m *DummyMIDIClient) DeviceCount(dir contracts.Direction) (int, error) {
	return 0, unavailable()
}

func (m *DummyMIDIClient) DeviceName(dir contracts.Direction, index int) (string, error) {
	return "", unavailable()
}

func (m *DummyMIDIClient) SelectDevice(deviceID int) error {
	m.logger.Warn("SelectDevice called on dummy MIDI client")
	return unavailable()
}

func (m *DummyMIDIClient) StartCapture(eventChannel chan message.Message) {
	m.logger.Warn("StartCapture called on dummy MIDI client")
}

func (m *DummyMIDIClient) OpenOutput(index int) error { return unavailable() }

func (m *DummyMIDIClient) OpenOutputByName(name string) error { return unavailable() }

func (m *DummyMIDIClient) Send(data []byte) error { return contracts.ErrOutputNotOpen }

func (m *DummyMIDIClient) CloseOutput() error { return contracts.ErrOutputNotOpen }

func (m *DummyMIDIClient) Stop() error {
	m.logger.Warn("Stop called on dummy MIDI client")
	return nil
}
