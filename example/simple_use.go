package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leandrodaf/midikit/internal/logger"
	"github.com/leandrodaf/midikit/internal/midi/memsink"
	"github.com/leandrodaf/midikit/sdk/contracts"
	"github.com/leandrodaf/midikit/sdk/message"
	"github.com/leandrodaf/midikit/sdk/midi"
	"github.com/leandrodaf/midikit/sdk/player"
	"github.com/leandrodaf/midikit/sdk/smf"
)

func main() {
	log := logger.NewZapLogger()

	// Build a two-track file: a tempo map and a short melody.
	f := smf.NewFile()
	tempoTrack, melody := f.AddTrack(), f.AddTrack()
	tempo, _ := message.MakeTempoBPM(90)
	_ = f.AddEvent(tempoTrack, 0, tempo)
	for i, key := range []byte{60, 64, 67, 72} {
		on, _ := message.MakeNoteOn(1, key, 100)
		off, _ := message.MakeNoteOff(1, key, 0)
		delta := uint32(0)
		if i > 0 {
			delta = smf.DefaultTicksPerQuarterNote / 2
		}
		_ = f.AddEvent(melody, delta, on)
		_ = f.AddEvent(melody, smf.DefaultTicksPerQuarterNote/2, off)
	}

	path := filepath.Join(os.TempDir(), "midikit-example.mid")
	if err := smf.WriteFile(path, f); err != nil {
		log.Error("Failed to write MIDI file", log.Field().Error("error", err))
		return
	}
	read, err := smf.ReadFile(path)
	if err != nil {
		log.Error("Failed to read MIDI file", log.Field().Error("error", err))
		return
	}
	fmt.Printf("Read %s: format %d, %d tracks\n", path, read.Format, read.NumTracks())

	client, err := midi.NewMIDIClient(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithBackend(contracts.BackendMemory),
		contracts.WithMIDIEventFilter(contracts.MIDIEventFilter{
			Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff},
		}),
	)
	if err != nil {
		log.Error("Failed to initialize MIDI client", log.Field().Error("error", err))
		return
	}
	defer client.Stop()

	devices, err := client.ListDevices(contracts.DirectionOutput)
	if err != nil {
		log.Error("No MIDI devices found or error listing devices", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI outputs:", devices)
	if err := client.OpenOutput(0); err != nil {
		log.Error("Failed to open MIDI output", log.Field().Error("error", err))
		return
	}

	events := make(chan contracts.PlayerEvent, 16)
	p := player.New(client, contracts.WithPlayerLogger(log), contracts.WithEventChannel(events))
	if err := p.Load(read); err != nil {
		log.Error("Failed to load sequence", log.Field().Error("error", err))
		return
	}
	p.Start()
	p.Wait()
	close(events)
	for ev := range events {
		fmt.Printf("%6.3fs  %v\n", ev.Timestamp, ev.Message)
	}

	// Live capture works the same way on a hardware input.
	if err := client.SelectDevice(0); err != nil {
		log.Error("Failed to select MIDI device", log.Field().Error("error", err))
		return
	}
	captured := make(chan message.Message, 4)
	client.StartCapture(captured)
	if mem, ok := client.(*memsink.Client); ok {
		_ = mem.Inject([]byte{0x90, 60, 100, 64, 0})
	}
	for len(captured) > 0 {
		m := <-captured
		fmt.Printf("Captured %v at %.6f\n", m, m.Timestamp())
	}
}
