// Package capture delivers live MIDI input from a device backend to the
// channel handed to StartCapture.
package capture

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/midikit/sdk/contracts"
	"github.com/leandrodaf/midikit/sdk/message"
)

// Dispatcher filters incoming messages and forwards them without blocking
// the driver callback. Backends call Dispatch from whatever goroutine or OS
// thread their driver uses.
type Dispatcher struct {
	logger       contracts.Logger
	filter       *contracts.MIDIEventFilter
	eventChannel atomic.Value // chan message.Message
	active       atomic.Bool
	wg           sync.WaitGroup
	mu           sync.Mutex
	split        Splitter
}

// NewDispatcher creates an inactive dispatcher.
func NewDispatcher(logger contracts.Logger, filter *contracts.MIDIEventFilter) *Dispatcher {
	return &Dispatcher{logger: logger, filter: filter}
}

// Start routes future messages to eventChannel, replacing any previous
// channel. It returns false for a nil channel.
func (d *Dispatcher) Start(eventChannel chan message.Message) bool {
	if eventChannel == nil {
		d.logger.Error("StartCapture called with nil eventChannel")
		return false
	}
	if d.active.Load() {
		d.logger.Warn("Capture already started; replacing event channel")
	}
	d.eventChannel.Store(eventChannel)
	d.active.Store(true)
	d.logger.Info("Starting MIDI event capture")
	return true
}

// Active reports whether messages are being forwarded.
func (d *Dispatcher) Active() bool { return d.active.Load() }

// Stop ends forwarding and waits for in-flight Dispatch calls.
func (d *Dispatcher) Stop() {
	if !d.active.Swap(false) {
		return
	}
	d.wg.Wait()
	d.logger.Info("MIDI capture stopped")
}

// Dispatch splits raw bytes received at time at into messages and forwards
// those the filter allows.
func (d *Dispatcher) Dispatch(data []byte, at time.Time) {
	if !d.active.Load() {
		return
	}
	d.wg.Add(1)
	defer d.wg.Done()

	eventChannel, _ := d.eventChannel.Load().(chan message.Message)
	if eventChannel == nil {
		d.logger.Warn("eventChannel not initialized or of invalid type")
		return
	}

	d.mu.Lock()
	msgs := d.split.Split(data)
	d.mu.Unlock()

	ts := float64(at.Unix()) + float64(at.Nanosecond())/float64(time.Second)
	for _, m := range msgs {
		if !d.filter.Allows(m) {
			continue
		}
		select {
		case eventChannel <- m.WithTimestamp(ts):
		default:
			d.logger.Warn("Event buffer full; dropping MIDI event",
				d.logger.Field().String("message", m.String()))
		}
	}
}
