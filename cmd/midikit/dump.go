package main

import (
	"fmt"

	"github.com/leandrodaf/midikit/sdk/smf"
	"github.com/spf13/cobra"
)

func (a *app) dumpCmd() *cobra.Command {
	var track int
	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print every event with its absolute tick",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.readFile(args[0])
			if err != nil {
				return err
			}
			if f, err = f.WithTickMode(smf.AbsoluteTicks); err != nil {
				return err
			}
			if track >= f.NumTracks() {
				return fmt.Errorf("%w: %d (file has %d tracks)", smf.ErrTrackIndexOutOfRange, track, f.NumTracks())
			}

			out := cmd.OutOrStdout()
			for i, t := range f.Tracks {
				if track >= 0 && i != track {
					continue
				}
				fmt.Fprintf(out, "track %d\n", i)
				for _, ev := range t {
					fmt.Fprintf(out, "%10d  %v\n", ev.Tick, ev.Message)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&track, "track", -1, "only dump this track")
	return cmd
}
