package main

import (
	"fmt"

	"github.com/leandrodaf/midikit/sdk/message"
	"github.com/leandrodaf/midikit/sdk/smf"
	"github.com/spf13/cobra"
)

// majorScale holds the semitone offsets of one ascending major octave.
var majorScale = []byte{0, 2, 4, 5, 7, 9, 11, 12}

type scaleOptions struct {
	root       int
	channel    int
	velocity   int
	bpm        float64
	resolution uint16
}

// buildScale returns a single-track file playing one quarter note per
// degree of the major scale on root.
func buildScale(o scaleOptions) (*smf.File, error) {
	if o.root < 0 || o.root+int(majorScale[len(majorScale)-1]) > 127 {
		return nil, fmt.Errorf("%w: root note %d", message.ErrOutOfRange, o.root)
	}
	if o.velocity < 1 || o.velocity > 127 {
		return nil, fmt.Errorf("%w: velocity %d", message.ErrOutOfRange, o.velocity)
	}

	f := smf.NewFile(smf.WithResolution(o.resolution))
	t := f.AddTrack()

	name, err := message.MakeTextMetaEvent(message.MetaTrackName, "Major Scale")
	if err != nil {
		return nil, err
	}
	tempo, err := message.MakeTempoBPM(o.bpm)
	if err != nil {
		return nil, err
	}
	sig, err := message.MakeTimeSignatureMetaEvent(4, 4)
	if err != nil {
		return nil, err
	}
	for _, m := range []message.Message{name, tempo, sig} {
		if err := f.AddEvent(t, 0, m); err != nil {
			return nil, err
		}
	}

	for _, step := range majorScale {
		key := byte(o.root) + step
		on, err := message.MakeNoteOn(o.channel, key, byte(o.velocity))
		if err != nil {
			return nil, err
		}
		off, err := message.MakeNoteOff(o.channel, key, 0)
		if err != nil {
			return nil, err
		}
		if err := f.AddEvent(t, 0, on); err != nil {
			return nil, err
		}
		if err := f.AddEvent(t, uint32(o.resolution), off); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (a *app) scaleCmd() *cobra.Command {
	var o scaleOptions
	cmd := &cobra.Command{
		Use:   "scale OUTPUT",
		Short: "Write a one-octave major scale to a MIDI file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("bpm") {
				o.bpm = a.cfg.BPM
			}
			f, err := buildScale(o)
			if err != nil {
				return err
			}
			w := smf.NewWriter(smf.WithWriterLogger(a.logger))
			if err := w.WriteFile(args[0], f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&o.root, "root", 60, "root note (60 is middle C)")
	flags.IntVar(&o.channel, "channel", 1, "MIDI channel, 1-16")
	flags.IntVar(&o.velocity, "velocity", 100, "note-on velocity")
	flags.Float64Var(&o.bpm, "bpm", 120, "tempo written to the file")
	flags.Uint16Var(&o.resolution, "resolution", smf.DefaultTicksPerQuarterNote, "ticks per quarter note")
	return cmd
}
