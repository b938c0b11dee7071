//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/midikit/internal/midi/capture"
	"github.com/leandrodaf/midikit/sdk/contracts"
	"github.com/leandrodaf/midikit/sdk/message"
	"github.com/youpy/go-coremidi"
	"go.uber.org/multierr"
)

// Error definitions for MIDI connection and handling issues.
var (
	ErrMIDIConnectionError = errors.New("error connecting to MIDI device")
	ErrCreateInputPort     = errors.New("error creating input port")
	ErrCreateOutputPort    = errors.New("error creating output port")
)

// Sources and destinations both describe themselves through Object.
var (
	_ endpoint = coremidi.Source{}
	_ endpoint = coremidi.Destination{}
)

// internalPortConnection is an interface for handling disconnection from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

// ClientMid manages MIDI operations on Darwin (macOS) systems.
// Input packets are handed to a capture.Dispatcher; output goes through a
// single CoreMIDI output port to the opened destination.
type ClientMid struct {
	logger         contracts.Logger
	client         coremidi.Client           // CoreMIDI client instance for MIDI operations.
	dispatch       *capture.Dispatcher       // Filters and forwards captured messages.
	coreMIDIConfig *contracts.CoreMIDIConfig // Configuration for MIDI client.

	mu         sync.Mutex             // Guards the ports below.
	inputPort  *coremidi.InputPort    // Created on first SelectDevice.
	portConn   internalPortConnection // Connection to the selected source.
	outputPort *coremidi.OutputPort   // Created on first OpenOutput.
	dest       *coremidi.Destination  // Opened destination, nil when closed.
}

// NewMIDIClient initializes a new ClientMid for handling MIDI events on macOS.
// Applies logging and configurations based on the provided options.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	client, err := coremidi.NewClient(options.CoreMIDIConfig.ClientName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrDeviceUnavailable, err)
	}
	options.Logger.Info("MIDI client successfully created",
		options.Logger.Field().String("clientName", options.CoreMIDIConfig.ClientName))

	return &ClientMid{
		logger:         options.Logger,
		client:         client,
		dispatch:       capture.NewDispatcher(options.Logger, options.MIDIEventFilter),
		coreMIDIConfig: options.CoreMIDIConfig,
	}, nil
}

func (m *ClientMid) portName(suffix string) string {
	if m.coreMIDIConfig.PortName != "" {
		return m.coreMIDIConfig.PortName + " " + suffix
	}
	return suffix
}

// ListDevices retrieves and returns available MIDI sources or destinations.
// If no devices are found, an error is logged and returned.
func (m *ClientMid) ListDevices(dir contracts.Direction) ([]contracts.DeviceInfo, error) {
	var devices []contracts.DeviceInfo
	if dir == contracts.DirectionOutput {
		dests, err := coremidi.AllDestinations()
		if err != nil {
			return nil, fmt.Errorf("error listing MIDI destinations: %w", err)
		}
		for i, dest := range dests {
			devices = append(devices, describe(i, dir, dest, ""))
		}
	} else {
		sources, err := coremidi.AllSources()
		if err != nil {
			return nil, fmt.Errorf("error listing MIDI sources: %w", err)
		}
		for i, source := range sources {
			devices = append(devices, describe(i, dir, source, source.Entity().Name()))
		}
	}

	if len(devices) == 0 {
		m.logger.Warn(contracts.ErrNoMIDIDevices.Error(), m.logger.Field().String("direction", dir.String()))
		return nil, contracts.ErrNoMIDIDevices
	}
	return devices, nil
}

func (m *ClientMid) DeviceCount(dir contracts.Direction) (int, error) {
	devices, err := m.ListDevices(dir)
	if errors.Is(err, contracts.ErrNoMIDIDevices) {
		return 0, nil
	}
	return len(devices), err
}

func (m *ClientMid) DeviceName(dir contracts.Direction, index int) (string, error) {
	devices, err := m.ListDevices(dir)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(devices) {
		return "", fmt.Errorf("%w: %s %d", contracts.ErrInvalidMIDIDevice, dir, index)
	}
	return devices[index].Name, nil
}

// SelectDevice selects a MIDI source by ID and connects to it.
// If a source is already connected, it disconnects first.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI sources: %w", err)
	}
	if deviceID < 0 || deviceID >= len(sources) {
		m.logger.Error(contracts.ErrInvalidMIDIDevice.Error())
		return contracts.ErrInvalidMIDIDevice
	}

	if m.portConn != nil {
		m.portConn.Disconnect()
		m.portConn = nil
	}

	source := sources[deviceID]
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", source.Name()))

	if m.inputPort == nil {
		port, err := coremidi.NewInputPort(m.client, m.portName("Input Port"), m.handleMIDIMessage)
		if err != nil {
			m.logger.Error(ErrCreateInputPort.Error())
			return fmt.Errorf("%w: %v", ErrCreateInputPort, err)
		}
		m.inputPort = &port
	}

	m.portConn, err = m.inputPort.Connect(source)
	if err != nil {
		m.logger.Error(ErrMIDIConnectionError.Error())
		return fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
	}

	m.logger.Info("MIDI device successfully connected")
	return nil
}

// handleMIDIMessage runs on the CoreMIDI thread. A packet may hold several
// messages, or part of a sysex; the dispatcher reassembles them.
func (m *ClientMid) handleMIDIMessage(source coremidi.Source, packet coremidi.Packet) {
	m.dispatch.Dispatch(packet.Data, time.Now())
}

// StartCapture begins forwarding messages from the selected source to
// eventChannel. Calling it again only swaps the channel.
func (m *ClientMid) StartCapture(eventChannel chan message.Message) {
	m.dispatch.Start(eventChannel)
}

// OpenOutput routes Send to the destination at index.
func (m *ClientMid) OpenOutput(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dests, err := coremidi.AllDestinations()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI destinations: %w", err)
	}
	if index < 0 || index >= len(dests) {
		return fmt.Errorf("%w: output %d", contracts.ErrInvalidMIDIDevice, index)
	}

	if m.outputPort == nil {
		port, err := coremidi.NewOutputPort(m.client, m.portName("Output Port"))
		if err != nil {
			m.logger.Error(ErrCreateOutputPort.Error())
			return fmt.Errorf("%w: %v", ErrCreateOutputPort, err)
		}
		m.outputPort = &port
	}

	dest := dests[index]
	m.dest = &dest
	m.logger.Info("MIDI output opened",
		m.logger.Field().Int("deviceID", index),
		m.logger.Field().String("deviceName", dest.Name()))
	return nil
}

func (m *ClientMid) OpenOutputByName(name string) error {
	devices, err := m.ListDevices(contracts.DirectionOutput)
	if err != nil {
		return err
	}
	index, err := contracts.FindDevice(devices, name)
	if err != nil {
		return err
	}
	return m.OpenOutput(index)
}

// Send transmits data in a single packet stamped for immediate delivery.
func (m *ClientMid) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dest == nil {
		return contracts.ErrOutputNotOpen
	}
	if len(data) == 0 {
		return nil
	}
	packet := coremidi.NewPacket(data, 0)
	if err := packet.Send(m.outputPort, m.dest); err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrDeviceUnavailable, err)
	}
	return nil
}

func (m *ClientMid) CloseOutput() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dest == nil {
		return contracts.ErrOutputNotOpen
	}
	m.dest = nil
	return nil
}

// Stop halts capture, disconnects from the source and waits for packets in
// flight. It is safe to call more than once.
func (m *ClientMid) Stop() error {
	m.logger.Info("Stopping MIDI client")
	m.mu.Lock()
	conn := m.portConn
	m.portConn = nil
	m.dest = nil
	m.mu.Unlock()

	var err error
	if conn != nil {
		err = multierr.Append(err, disconnect(conn))
	}
	m.dispatch.Stop()
	return err
}

// disconnect turns a panic from the CoreMIDI binding into an error.
func disconnect(conn internalPortConnection) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: disconnect: %v", contracts.ErrDeviceUnavailable, r)
		}
	}()
	conn.Disconnect()
	return nil
}
