//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"github.com/leandrodaf/midikit/internal/midi/capture"
	"github.com/leandrodaf/midikit/sdk/contracts"
	"github.com/leandrodaf/midikit/sdk/message"
	"go.uber.org/multierr"
	"golang.org/x/sys/windows"
)

// Type definitions for MIDI handles
type (
	HMIDIIN  windows.Handle
	HMIDIOUT windows.Handle
)

// Constants for callback flags
const (
	CALLBACK_NULL     = 0x00000000 // No callback
	CALLBACK_FUNCTION = 0x00030000 // Indicates that the callback is a function
	MIDI_IO_STATUS    = 0x00000020 // MIDI input/output status
)

// Constants for MIDI message types
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened
	MIM_CLOSE     = 0x3C2 // MIDI device closed
	MIM_DATA      = 0x3C3 // MIDI data received
	MIM_LONGDATA  = 0x3C4 // Sysex buffer returned
	MIM_ERROR     = 0x3C5 // MIDI error
	MIM_LONGERROR = 0x3C6 // Long MIDI error
	MIM_MOREDATA  = 0x3CC // More MIDI data available
)

const (
	MHDR_DONE           = 0x00000001
	MIDIERR_STILLPLAYING = 65
)

var errWinMM = errors.New("winmm call failed")

// Struct representing MIDI input device capabilities
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// Struct representing MIDI output device capabilities
type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

// midiHdr mirrors MIDIHDR, used to send sysex.
type midiHdr struct {
	lpData          uintptr
	dwBufferLength  uint32
	dwBytesRecorded uint32
	dwUser          uintptr
	dwFlags         uint32
	lpNext          uintptr
	reserved        uintptr
	dwOffset        uint32
	dwReserved      [8]uintptr
}

// ClientMid manages MIDI on Windows
type ClientMid struct {
	logger   contracts.Logger
	dispatch *capture.Dispatcher
	mu       sync.Mutex
	handle   HMIDIIN
	portConn bool
	started  bool
	instance uintptr // key in inputClients while an input is open
	out      HMIDIOUT
	outOpen  bool
}

// Load the winmm.dll library and required functions
var (
	winmm                      = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs       = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps       = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen             = winmm.NewProc("midiInOpen")
	procMidiInStart            = winmm.NewProc("midiInStart")
	procMidiInStop             = winmm.NewProc("midiInStop")
	procMidiInClose            = winmm.NewProc("midiInClose")
	procMidiOutGetNumDevs      = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps      = winmm.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen            = winmm.NewProc("midiOutOpen")
	procMidiOutShortMsg        = winmm.NewProc("midiOutShortMsg")
	procMidiOutLongMsg         = winmm.NewProc("midiOutLongMsg")
	procMidiOutPrepareHeader   = winmm.NewProc("midiOutPrepareHeader")
	procMidiOutUnprepareHeader = winmm.NewProc("midiOutUnprepareHeader")
	procMidiOutReset           = winmm.NewProc("midiOutReset")
	procMidiOutClose           = winmm.NewProc("midiOutClose")
)

// inputClients resolves the dwInstance of midiInCallback.
var inputClients instances[*ClientMid]

// windows.NewCallback slots are never freed, so every client shares one.
var (
	inputCallbackOnce sync.Once
	inputCallback     uintptr
)

func midiInCallbackPtr() uintptr {
	inputCallbackOnce.Do(func() {
		inputCallback = windows.NewCallback(midiInCallback)
	})
	return inputCallback
}

// NewMIDIClient creates a MIDI client for Windows
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("MIDI client created for Windows")

	return &ClientMid{
		logger:   options.Logger,
		dispatch: capture.NewDispatcher(options.Logger, options.MIDIEventFilter),
	}, nil
}

func mmErr(call string, r1 uintptr) error {
	return fmt.Errorf("%w: %s returned %d", errWinMM, call, r1)
}

// ListDevices lists the available MIDI devices in one direction
func (m *ClientMid) ListDevices(dir contracts.Direction) ([]contracts.DeviceInfo, error) {
	numProc := procMidiInGetNumDevs
	if dir == contracts.DirectionOutput {
		numProc = procMidiOutGetNumDevs
	}
	r0, _, _ := numProc.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		m.logger.Warn("No MIDI devices found", m.logger.Field().String("direction", dir.String()))
		return nil, contracts.ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var (
			name     string
			mid, pid uint16
			r1       uintptr
		)
		if dir == contracts.DirectionOutput {
			var caps midiOutCaps
			r1, _, _ = procMidiOutGetDevCaps.Call(uintptr(i), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
			name, mid, pid = windows.UTF16ToString(caps.szPname[:]), caps.wMid, caps.wPid
		} else {
			var caps midiInCaps
			r1, _, _ = procMidiInGetDevCaps.Call(uintptr(i), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
			name, mid, pid = windows.UTF16ToString(caps.szPname[:]), caps.wMid, caps.wPid
		}
		if r1 != 0 {
			m.logger.Warn(fmt.Sprintf("Failed to get information for MIDI device %d", i))
			continue
		}
		devices = append(devices, contracts.DeviceInfo{
			Index:        int(i),
			Direction:    dir,
			Name:         name,
			EntityName:   name,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", mid, pid),
		})
	}
	return devices, nil
}

func (m *ClientMid) DeviceCount(dir contracts.Direction) (int, error) {
	numProc := procMidiInGetNumDevs
	if dir == contracts.DirectionOutput {
		numProc = procMidiOutGetNumDevs
	}
	r0, _, _ := numProc.Call()
	return int(uint32(r0)), nil
}

func (m *ClientMid) DeviceName(dir contracts.Direction, index int) (string, error) {
	devices, err := m.ListDevices(dir)
	if err != nil {
		return "", err
	}
	for _, d := range devices {
		if d.Index == index {
			return d.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %s %d", contracts.ErrInvalidMIDIDevice, dir, index)
}

// SelectDevice opens a MIDI input device
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n, _ := m.DeviceCount(contracts.DirectionInput); deviceID < 0 || deviceID >= n {
		m.logger.Error(contracts.ErrInvalidMIDIDevice.Error())
		return contracts.ErrInvalidMIDIDevice
	}

	if m.portConn {
		if err := m.stopCapture(); err != nil {
			return fmt.Errorf("failed to stop previous MIDI capture: %w", err)
		}
	}

	fdwOpen := CALLBACK_FUNCTION | MIDI_IO_STATUS

	m.instance = inputClients.add(m)
	r1, _, _ := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&m.handle)),
		uintptr(deviceID),
		midiInCallbackPtr(),
		m.instance,
		uintptr(fdwOpen),
	)
	if r1 != 0 {
		inputClients.remove(m.instance)
		m.instance = 0
		err := mmErr("midiInOpen", r1)
		m.logger.Error("Failed to open MIDI device", m.logger.Field().Int("deviceID", deviceID), m.logger.Field().Error("error", err))
		return fmt.Errorf("%w: %w", contracts.ErrDeviceUnavailable, err)
	}

	m.portConn = true
	m.logger.Info("MIDI device selected", m.logger.Field().Int("deviceID", deviceID))
	return nil
}

// StartCapture routes input to eventChannel and starts the device
func (m *ClientMid) StartCapture(eventChannel chan message.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.portConn || m.handle == 0 {
		m.logger.Error("Cannot start capture: No MIDI device selected")
		return
	}
	if !m.dispatch.Start(eventChannel) || m.started {
		return
	}

	r1, _, _ := procMidiInStart.Call(uintptr(m.handle))
	if r1 != 0 {
		m.logger.Error("Failed to start MIDI capture", m.logger.Field().Error("error", mmErr("midiInStart", r1)))
		m.dispatch.Stop()
		return
	}
	m.started = true
}

// midiInCallback processes incoming MIDI messages. Short messages arrive
// packed into dwParam1, status byte lowest.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	m, ok := inputClients.get(dwInstance)
	if !ok {
		return 0
	}

	switch wMsg {
	case MIM_OPEN:
		m.logger.Info("MIDI device opened")
	case MIM_CLOSE:
		m.logger.Info("MIDI device closed")
	case MIM_DATA, MIM_MOREDATA:
		packed := []byte{byte(dwParam1), byte(dwParam1 >> 8), byte(dwParam1 >> 16)}
		m.dispatch.Dispatch(packed[:capture.MessageLength(packed[0])], time.Now())
	case MIM_LONGDATA:
		m.logger.Debug("Sysex input is not captured on Windows")
	case MIM_ERROR, MIM_LONGERROR:
		m.logger.Error(fmt.Sprintf("MIDI error: msg=0x%X", wMsg))
	default:
		m.logger.Warn(fmt.Sprintf("Unknown MIDI message: 0x%X", wMsg))
	}

	return 0
}

// OpenOutput opens the output device at index, closing any previous one
func (m *ClientMid) OpenOutput(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n, _ := m.DeviceCount(contracts.DirectionOutput); index < 0 || index >= n {
		return fmt.Errorf("%w: output %d", contracts.ErrInvalidMIDIDevice, index)
	}
	if m.outOpen {
		if err := m.closeOutput(); err != nil {
			m.logger.Warn("Failed to close previous output", m.logger.Field().Error("error", err))
		}
	}

	r1, _, _ := procMidiOutOpen.Call(uintptr(unsafe.Pointer(&m.out)), uintptr(index), 0, 0, CALLBACK_NULL)
	if r1 != 0 {
		return fmt.Errorf("%w: %w", contracts.ErrDeviceUnavailable, mmErr("midiOutOpen", r1))
	}
	m.outOpen = true
	m.logger.Info("MIDI output opened", m.logger.Field().Int("deviceID", index))
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

// Send writes data to the open output. Messages of up to three bytes go out
// as a packed short message; sysex goes out as a long message.
func (m *ClientMid) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.outOpen {
		return contracts.ErrOutputNotOpen
	}
	if len(data) == 0 {
		return nil
	}
	if data[0] == message.SystemExclusive || len(data) > 3 {
		return m.sendLong(data)
	}

	var packed uintptr
	for i, b := range data {
		packed |= uintptr(b) << (8 * i)
	}
	if r1, _, _ := procMidiOutShortMsg.Call(uintptr(m.out), packed); r1 != 0 {
		return fmt.Errorf("%w: %w", contracts.ErrDeviceUnavailable, mmErr("midiOutShortMsg", r1))
	}
	return nil
}

func (m *ClientMid) sendLong(data []byte) error {
	buf := append([]byte(nil), data...)
	hdr := &midiHdr{
		lpData:         uintptr(unsafe.Pointer(&buf[0])),
		dwBufferLength: uint32(len(buf)),
	}
	defer runtime.KeepAlive(buf)

	size := unsafe.Sizeof(*hdr)
	if r1, _, _ := procMidiOutPrepareHeader.Call(uintptr(m.out), uintptr(unsafe.Pointer(hdr)), size); r1 != 0 {
		return fmt.Errorf("%w: %w", contracts.ErrDeviceUnavailable, mmErr("midiOutPrepareHeader", r1))
	}
	if r1, _, _ := procMidiOutLongMsg.Call(uintptr(m.out), uintptr(unsafe.Pointer(hdr)), size); r1 != 0 {
		_, _, _ = procMidiOutUnprepareHeader.Call(uintptr(m.out), uintptr(unsafe.Pointer(hdr)), size)
		return fmt.Errorf("%w: %w", contracts.ErrDeviceUnavailable, mmErr("midiOutLongMsg", r1))
	}
	for {
		r1, _, _ := procMidiOutUnprepareHeader.Call(uintptr(m.out), uintptr(unsafe.Pointer(hdr)), size)
		if r1 != MIDIERR_STILLPLAYING {
			if r1 != 0 {
				return mmErr("midiOutUnprepareHeader", r1)
			}
			return nil
		}
		time.Sleep(time.Millisecond)
	}
}

func (m *ClientMid) CloseOutput() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.outOpen {
		return contracts.ErrOutputNotOpen
	}
	return m.closeOutput()
}

func (m *ClientMid) closeOutput() error {
	var err error
	if r1, _, _ := procMidiOutReset.Call(uintptr(m.out)); r1 != 0 {
		err = multierr.Append(err, mmErr("midiOutReset", r1))
	}
	if r1, _, _ := procMidiOutClose.Call(uintptr(m.out)); r1 != 0 {
		err = multierr.Append(err, mmErr("midiOutClose", r1))
	}
	m.outOpen = false
	m.out = 0
	return err
}

// Stop terminates MIDI event capture and closes both devices
func (m *ClientMid) Stop() error {
	m.dispatch.Stop()

	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.portConn {
		err = multierr.Append(err, m.stopCapture())
	}
	if m.outOpen {
		err = multierr.Append(err, m.closeOutput())
	}
	if err != nil {
		m.logger.Error("Failed to stop MIDI client", m.logger.Field().Error("error", err))
		return err
	}
	m.logger.Info("MIDI capture stopped and device closed")
	return nil
}

// stopCapture stops the capture and releases resources
func (m *ClientMid) stopCapture() error {
	if m.handle == 0 {
		return fmt.Errorf("invalid MIDI device handle")
	}

	var err error
	if r1, _, _ := procMidiInStop.Call(uintptr(m.handle)); r1 != 0 {
		err = multierr.Append(err, mmErr("midiInStop", r1))
	}
	if r1, _, _ := procMidiInClose.Call(uintptr(m.handle)); r1 != 0 {
		err = multierr.Append(err, mmErr("midiInClose", r1))
	}

	inputClients.remove(m.instance)
	m.instance = 0
	m.portConn = false
	m.started = false
	m.handle = 0
	return err
}
