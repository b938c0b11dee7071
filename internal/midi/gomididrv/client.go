// Package gomididrv adapts the drivers registered with gitlab.com/gomidi/midi
// to contracts.ClientMIDI. It is the backend for platforms without a native
// one, and for any platform when the rtmidi build tag registers rtmididrv.
package gomididrv

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/midikit/internal/midi/capture"
	"github.com/leandrodaf/midikit/sdk/contracts"
	"github.com/leandrodaf/midikit/sdk/message"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/multierr"
)

// ErrNoDriver is returned when no gomidi driver is registered.
var ErrNoDriver = errors.New("no gomidi driver registered")

// Client is a contracts.ClientMIDI backed by a gomidi driver.
type Client struct {
	logger   contracts.Logger
	drv      drivers.Driver
	dispatch *capture.Dispatcher

	mu         sync.Mutex
	selected   drivers.In
	out        drivers.Out
	stopListen func()
}

// NewMIDIClient creates a client on the default registered driver.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	drv := drivers.Get()
	if drv == nil {
		return nil, ErrNoDriver
	}
	return New(options.Logger, options.MIDIEventFilter, drv), nil
}

// New creates a client on drv.
func New(logger contracts.Logger, filter *contracts.MIDIEventFilter, drv drivers.Driver) *Client {
	logger.Debug("gomidi driver in use", logger.Field().String("driver", drv.String()))
	return &Client{
		logger:   logger,
		drv:      drv,
		dispatch: capture.NewDispatcher(logger, filter),
	}
}

func (c *Client) ListDevices(dir contracts.Direction) ([]contracts.DeviceInfo, error) {
	var names []string
	if dir == contracts.DirectionOutput {
		outs, err := c.drv.Outs()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", contracts.ErrDeviceUnavailable, err)
		}
		for _, out := range outs {
			names = append(names, out.String())
		}
	} else {
		ins, err := c.drv.Ins()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", contracts.ErrDeviceUnavailable, err)
		}
		for _, in := range ins {
			names = append(names, in.String())
		}
	}
	if len(names) == 0 {
		return nil, contracts.ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(names))
	for i, name := range names {
		devices[i] = contracts.DeviceInfo{
			Index:      i,
			Direction:  dir,
			Name:       name,
			EntityName: c.drv.String(),
		}
	}
	return devices, nil
}

func (c *Client) DeviceCount(dir contracts.Direction) (int, error) {
	devices, err := c.ListDevices(dir)
	if errors.Is(err, contracts.ErrNoMIDIDevices) {
		return 0, nil
	}
	return len(devices), err
}

func (c *Client) DeviceName(dir contracts.Direction, index int) (string, error) {
	devices, err := c.ListDevices(dir)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(devices) {
		return "", fmt.Errorf("%w: %s %d", contracts.ErrInvalidMIDIDevice, dir, index)
	}
	return devices[index].Name, nil
}

// SelectDevice picks the input port StartCapture listens to. A capture that
// is already running keeps its port until the next StartCapture.
func (c *Client) SelectDevice(deviceID int) error {
	ins, err := c.drv.Ins()
	if err != nil {
		return fmt.Errorf("%w: %w", contracts.ErrDeviceUnavailable, err)
	}
	if deviceID < 0 || deviceID >= len(ins) {
		c.logger.Error(contracts.ErrInvalidMIDIDevice.Error(), c.logger.Field().Int("deviceID", deviceID))
		return contracts.ErrInvalidMIDIDevice
	}

	c.mu.Lock()
	c.selected = ins[deviceID]
	c.mu.Unlock()
	c.logger.Info("MIDI device selected",
		c.logger.Field().Int("deviceID", deviceID),
		c.logger.Field().String("deviceName", ins[deviceID].String()))
	return nil
}

// StartCapture listens on the selected input. Failures are logged; the
// channel then receives nothing.
func (c *Client) StartCapture(eventChannel chan message.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		c.logger.Error("No MIDI device selected")
		return
	}
	if !c.dispatch.Start(eventChannel) {
		return
	}
	if c.stopListen != nil {
		c.stopListen()
	}

	stop, err := midi.ListenTo(c.selected, func(msg midi.Message, _ int32) {
		c.dispatch.Dispatch(msg.Bytes(), time.Now())
	}, midi.UseSysEx())
	if err != nil {
		c.logger.Error("Failed to listen on MIDI input",
			c.logger.Field().String("deviceName", c.selected.String()),
			c.logger.Field().Error("error", err))
		c.dispatch.Stop()
		c.stopListen = nil
		return
	}
	c.stopListen = stop
}

func (c *Client) OpenOutput(index int) error {
	outs, err := c.drv.Outs()
	if err != nil {
		return fmt.Errorf("%w: %w", contracts.ErrDeviceUnavailable, err)
	}
	if index < 0 || index >= len(outs) {
		return fmt.Errorf("%w: output %d", contracts.ErrInvalidMIDIDevice, index)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.out != nil {
		if err := c.out.Close(); err != nil {
			c.logger.Warn("Failed to close previous output", c.logger.Field().Error("error", err))
		}
		c.out = nil
	}
	out := outs[index]
	if err := out.Open(); err != nil {
		return fmt.Errorf("%w: %w", contracts.ErrDeviceUnavailable, err)
	}
	c.out = out
	c.logger.Info("MIDI output opened", c.logger.Field().String("deviceName", out.String()))
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

// Send writes data to the open output port immediately.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	out := c.out
	c.mu.Unlock()
	if out == nil {
		return contracts.ErrOutputNotOpen
	}
	if err := out.Send(data); err != nil {
		return fmt.Errorf("%w: %w", contracts.ErrDeviceUnavailable, err)
	}
	return nil
}

func (c *Client) CloseOutput() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.out == nil {
		return contracts.ErrOutputNotOpen
	}
	err := c.out.Close()
	c.out = nil
	return err
}

// Stop ends capture and closes the open ports. Every close is attempted; the
// errors are combined.
func (c *Client) Stop() error {
	c.mu.Lock()
	stop := c.stopListen
	c.stopListen = nil
	out := c.out
	c.out = nil
	in := c.selected
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
	c.dispatch.Stop()

	var err error
	if out != nil {
		err = multierr.Append(err, out.Close())
	}
	if in != nil && in.IsOpen() {
		err = multierr.Append(err, in.Close())
	}
	if err != nil {
		c.logger.Error("Error stopping MIDI client", c.logger.Field().Error("error", err))
	}
	return err
}
