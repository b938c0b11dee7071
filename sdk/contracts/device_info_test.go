package contracts

import (
	"errors"
	"testing"
)

func TestDirectionString(t *testing.T) {
	if got := DirectionInput.String(); got != "input" {
		t.Fatalf("DirectionInput = %q", got)
	}
	if got := DirectionOutput.String(); got != "output" {
		t.Fatalf("DirectionOutput = %q", got)
	}
}

func TestFindDevice(t *testing.T) {
	devices := []DeviceInfo{
		{Index: 0, Direction: DirectionOutput, Name: "IAC Driver Bus 1"},
		{Index: 1, Direction: DirectionOutput, Name: "IAC Driver Bus 2"},
		{Index: 2, Direction: DirectionOutput, Name: "Synth"},
	}
	tests := []struct {
		name string
		want int
		err  error
	}{
		{"Synth", 2, nil},
		{"synth", 2, nil},
		{"bus 2", 1, nil},
		{"IAC", -1, ErrInvalidMIDIDevice},
		{"Piano", -1, ErrInvalidMIDIDevice},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FindDevice(devices, tc.name)
			if !errors.Is(err, tc.err) {
				t.Fatalf("err = %v, want %v", err, tc.err)
			}
			if got != tc.want {
				t.Fatalf("index = %d, want %d", got, tc.want)
			}
		})
	}
}

// A player sink and a device client share the Send method; every client is
// usable as the player's Output.
var _ Output = ClientMIDI(nil)
