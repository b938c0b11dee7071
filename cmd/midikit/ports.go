package main

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/midikit/sdk/contracts"
	"github.com/leandrodaf/midikit/sdk/midi"
	"github.com/spf13/cobra"
)

func (a *app) newClient(backend contracts.Backend) (contracts.ClientMIDI, error) {
	return midi.NewMIDIClient(
		contracts.WithLogger(a.logger),
		contracts.WithLogLevel(a.cfg.LogLevel),
		contracts.WithBackend(backend),
	)
}

func (a *app) portsCmd() *cobra.Command {
	var input bool
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List MIDI devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(a.cfg.Backend)
			if err != nil {
				return err
			}
			defer client.Stop()

			dir := contracts.DirectionOutput
			if input {
				dir = contracts.DirectionInput
			}
			out := cmd.OutOrStdout()
			devices, err := client.ListDevices(dir)
			if errors.Is(err, contracts.ErrNoMIDIDevices) {
				fmt.Fprintf(out, "no %s devices\n", dir)
				return nil
			}
			if err != nil {
				return err
			}
			for _, d := range devices {
				fmt.Fprintf(out, "%3d  %s", d.Index, d.Name)
				if d.Manufacturer != "" {
					fmt.Fprintf(out, "  (%s)", d.Manufacturer)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&input, "input", false, "list input devices instead of outputs")
	return cmd
}
