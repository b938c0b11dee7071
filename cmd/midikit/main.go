// Command midikit inspects, writes and plays Standard MIDI Files.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "midikit:", err)
		os.Exit(1)
	}
}
