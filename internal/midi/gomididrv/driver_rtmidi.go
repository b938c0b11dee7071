//go:build rtmidi

package gomididrv

// The rtmidi driver needs cgo and the system rtmidi library.
import _ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
