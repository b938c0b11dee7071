// Package memsink is an in-memory MIDI device. It records what is sent to it
// and lets tests inject input, so the player and the CLI can run without
// hardware.
package memsink

import (
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/midikit/internal/midi/capture"
	"github.com/leandrodaf/midikit/sdk/contracts"
	"github.com/leandrodaf/midikit/sdk/message"
)

// Sent is one recorded transmission.
type Sent struct {
	Data []byte
	At   time.Time
}

// Client is a contracts.ClientMIDI backed by memory.
type Client struct {
	logger   contracts.Logger
	dispatch *capture.Dispatcher

	mu       sync.Mutex
	inputs   []string
	outputs  []string
	selected int
	open     int
	sent     []Sent
	failN    int
	failErr  error
	notifyCh chan struct{}
}

// NewMIDIClient creates a client with one input and one output device, in the
// shape expected by the backend factory.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	return New(options.Logger, options.MIDIEventFilter), nil
}

// New creates a client with the devices "Memory In" and "Memory Out". No
// device is selected or opened.
func New(logger contracts.Logger, filter *contracts.MIDIEventFilter) *Client {
	return &Client{
		logger:   logger,
		dispatch: capture.NewDispatcher(logger, filter),
		inputs:   []string{"Memory In"},
		outputs:  []string{"Memory Out"},
		selected: -1,
		open:     -1,
		notifyCh: make(chan struct{}, 1),
	}
}

// NewSink returns a client whose output is already open.
func NewSink(logger contracts.Logger) *Client {
	c := New(logger, nil)
	c.open = 0
	return c
}

// AddDevice registers another device and returns its index.
func (c *Client) AddDevice(dir contracts.Direction, name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if dir == contracts.DirectionOutput {
		c.outputs = append(c.outputs, name)
		return len(c.outputs) - 1
	}
	c.inputs = append(c.inputs, name)
	return len(c.inputs) - 1
}

func (c *Client) names(dir contracts.Direction) []string {
	if dir == contracts.DirectionOutput {
		return c.outputs
	}
	return c.inputs
}

// ListDevices lists the registered devices in one direction.
func (c *Client) ListDevices(dir contracts.Direction) ([]contracts.DeviceInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := c.names(dir)
	if len(names) == 0 {
		return nil, contracts.ErrNoMIDIDevices
	}
	devices := make([]contracts.DeviceInfo, len(names))
	for i, name := range names {
		devices[i] = contracts.DeviceInfo{
			Index:        i,
			Direction:    dir,
			Name:         name,
			Manufacturer: "midikit",
			EntityName:   "memsink",
		}
	}
	return devices, nil
}

func (c *Client) DeviceCount(dir contracts.Direction) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.names(dir)), nil
}

func (c *Client) DeviceName(dir contracts.Direction, index int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := c.names(dir)
	if index < 0 || index >= len(names) {
		return "", fmt.Errorf("%w: %s %d", contracts.ErrInvalidMIDIDevice, dir, index)
	}
	return names[index], nil
}

// SelectDevice picks the input that Inject feeds.
func (c *Client) SelectDevice(deviceID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if deviceID < 0 || deviceID >= len(c.inputs) {
		c.logger.Error(contracts.ErrInvalidMIDIDevice.Error())
		return contracts.ErrInvalidMIDIDevice
	}
	c.selected = deviceID
	c.logger.Info("MIDI device selected",
		c.logger.Field().Int("deviceID", deviceID),
		c.logger.Field().String("deviceName", c.inputs[deviceID]))
	return nil
}

func (c *Client) StartCapture(eventChannel chan message.Message) {
	c.dispatch.Start(eventChannel)
}

// Inject delivers raw bytes as if they arrived on the selected input.
func (c *Client) Inject(data []byte) error {
	c.mu.Lock()
	selected := c.selected
	c.mu.Unlock()
	if selected < 0 {
		return contracts.ErrDeviceUnavailable
	}
	c.dispatch.Dispatch(data, time.Now())
	return nil
}

func (c *Client) OpenOutput(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.outputs) {
		return fmt.Errorf("%w: output %d", contracts.ErrInvalidMIDIDevice, index)
	}
	c.open = index
	c.logger.Info("MIDI output opened", c.logger.Field().String("deviceName", c.outputs[index]))
	return nil
}

func (c *Client) OpenOutputByName(name string) error {
	devices, err := c.ListDevices(contracts.DirectionOutput)
	if err != nil {
		return err
	}
	index, err := contracts.FindDevice(devices, name)
	if err != nil {
		return err
	}
	return c.OpenOutput(index)
}

// FailNext makes the next n sends return err.
func (c *Client) FailNext(n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failN, c.failErr = n, err
}

// Send records data on the open output.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open < 0 {
		return contracts.ErrOutputNotOpen
	}
	if c.failN > 0 {
		c.failN--
		return fmt.Errorf("%w: %w", contracts.ErrDeviceUnavailable, c.failErr)
	}
	c.sent = append(c.sent, Sent{Data: append([]byte(nil), data...), At: time.Now()})
	select {
	case c.notifyCh <- struct{}{}:
	default:
	}
	return nil
}

// Sent returns a copy of everything sent so far.
func (c *Client) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

// WaitSent blocks until at least n transmissions were recorded or timeout
// passes, and reports which happened first.
func (c *Client) WaitSent(n int, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		c.mu.Lock()
		got := len(c.sent)
		c.mu.Unlock()
		if got >= n {
			return true
		}
		select {
		case <-c.notifyCh:
		case <-deadline.C:
			return false
		}
	}
}

func (c *Client) CloseOutput() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open < 0 {
		return contracts.ErrOutputNotOpen
	}
	c.open = -1
	return nil
}

// Stop ends capture and closes the output.
func (c *Client) Stop() error {
	c.dispatch.Stop()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = -1
	c.selected = -1
	return nil
}
