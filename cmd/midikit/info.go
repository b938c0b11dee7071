package main

import (
	"fmt"

	"github.com/leandrodaf/midikit/internal/midi/memsink"
	"github.com/leandrodaf/midikit/sdk/contracts"
	"github.com/leandrodaf/midikit/sdk/message"
	"github.com/leandrodaf/midikit/sdk/player"
	"github.com/leandrodaf/midikit/sdk/smf"
	"github.com/spf13/cobra"
)

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Summarise a MIDI file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.readFile(args[0])
			if err != nil {
				return err
			}

			// Loading into a player applies the file's tempo map.
			p := player.New(memsink.NewSink(a.logger),
				contracts.WithPlayerLogger(a.logger),
				contracts.WithBPM(a.cfg.BPM))
			if err := p.Load(f); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:        %s\n", args[0])
			fmt.Fprintf(out, "format:      %d\n", f.Format)
			fmt.Fprintf(out, "tracks:      %d\n", f.NumTracks())
			fmt.Fprintf(out, "resolution:  %d ticks per quarter note\n", f.TicksPerQuarterNote)
			fmt.Fprintf(out, "end tick:    %d\n", f.EndTick())
			fmt.Fprintf(out, "duration:    %.3fs\n", p.Length())
			for i, t := range f.Tracks {
				fmt.Fprintf(out, "track %d:     %d events", i, len(t))
				if name := trackName(t); name != "" {
					fmt.Fprintf(out, ", %q", name)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

// trackName returns the first track name meta-event of t.
func trackName(t smf.Track) string {
	for _, ev := range t {
		if st, ok := ev.Message.MetaSubtype(); !ok || st != message.MetaTrackName {
			continue
		}
		if meta, err := message.DecodeMeta(ev.Message); err == nil {
			return meta.(message.Text).Text
		}
	}
	return ""
}
