package contracts

import (
	"errors"

	"github.com/leandrodaf/midikit/sdk/message"
)

// Error definitions shared by the device backends.
var (
	ErrDeviceUnavailable = errors.New("MIDI device unavailable")
	ErrNoMIDIDevices     = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	ErrOutputNotOpen     = errors.New("no MIDI output is open")
)

// Output is a sink that transmits raw MIDI bytes immediately.
type Output interface {
	Send(data []byte) error
}

// ClientMIDI defines an interface for MIDI client operations.
type ClientMIDI interface {
	Stop() error                                         // Stops capture, closes the output and releases resources.
	ListDevices(dir Direction) ([]DeviceInfo, error)     // Lists the available devices in one direction.
	DeviceCount(dir Direction) (int, error)              // Number of devices in one direction.
	DeviceName(dir Direction, index int) (string, error) // Name of the device at index.
	SelectDevice(deviceID int) error                     // Selects the input device used by StartCapture.
	StartCapture(eventChannel chan message.Message)      // Starts capturing MIDI messages into eventChannel.
	OpenOutput(index int) error                          // Opens the output device at index.
	OpenOutputByName(name string) error                  // Opens the output device matching name.
	Send(data []byte) error                              // Transmits raw bytes through the open output.
	CloseOutput() error                                  // Closes the open output, if any.
}

// PlayerEvent is one message dispatched by the sequence player. Timestamp is
// the offset in seconds from the start of the sequence.
type PlayerEvent struct {
	Timestamp float64
	Track     int
	Message   message.Message
}
