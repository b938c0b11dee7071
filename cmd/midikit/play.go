package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/leandrodaf/midikit/internal/watch"
	"github.com/leandrodaf/midikit/sdk/contracts"
	"github.com/leandrodaf/midikit/sdk/midi"
	"github.com/leandrodaf/midikit/sdk/player"
	"github.com/spf13/cobra"
)

type playOptions struct {
	port       string
	loop       bool
	noteOnOnly bool
	bpm        float64
	tpb        uint16
	tracks     []int
	watch      bool
	dryRun     bool
	verbose    bool
}

func (a *app) playCmd() *cobra.Command {
	var o playOptions
	cmd := &cobra.Command{
		Use:   "play FILE",
		Short: "Play a MIDI file to an output device",
		Long: "Play a MIDI file to an output device. With --dry-run the messages go to an\n" +
			"in-memory device and are printed instead. Interrupt to stop.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("bpm") {
				o.bpm = a.cfg.BPM
			}
			if !flags.Changed("ticks-per-beat") {
				o.tpb = a.cfg.TicksPerBeat
			}
			if !flags.Changed("port") {
				o.port = a.cfg.Output
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.play(ctx, cmd.OutOrStdout(), args[0], o)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&o.port, "port", "", "output device name or index; the first device when empty")
	flags.BoolVar(&o.loop, "loop", false, "restart when the sequence ends")
	flags.BoolVar(&o.noteOnOnly, "note-on-only", false, "play note-on messages only")
	flags.Float64Var(&o.bpm, "bpm", 120, "starting tempo; tempo events in the file replace it")
	flags.Uint16Var(&o.tpb, "ticks-per-beat", 0, "override the file's resolution")
	flags.IntSliceVar(&o.tracks, "tracks", nil, "tracks to play; all when empty")
	flags.BoolVar(&o.watch, "watch", false, "reload and restart when the file changes")
	flags.BoolVar(&o.dryRun, "dry-run", false, "send to an in-memory device and print each message")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "print each message as it is sent")
	return cmd
}

func (a *app) openOutput(o playOptions) (contracts.ClientMIDI, error) {
	backend, port := a.cfg.Backend, o.port
	if o.dryRun {
		backend, port = contracts.BackendMemory, ""
	}
	return midi.NewOutput(port,
		contracts.WithLogger(a.logger),
		contracts.WithLogLevel(a.cfg.LogLevel),
		contracts.WithBackend(backend),
	)
}

// play runs until the sequence ends, or until ctx is done when looping or
// watching.
func (a *app) play(ctx context.Context, out io.Writer, path string, o playOptions) error {
	client, err := a.openOutput(o)
	if err != nil {
		return err
	}
	defer client.Stop()

	events := make(chan contracts.PlayerEvent, 256)
	opts := []contracts.PlayerOption{
		contracts.WithPlayerLogger(a.logger),
		contracts.WithBPM(o.bpm),
		contracts.WithLoop(o.loop),
		contracts.WithEventChannel(events),
	}
	if o.tpb > 0 {
		opts = append(opts, contracts.WithTicksPerBeat(o.tpb))
	}
	if o.noteOnOnly {
		opts = append(opts, contracts.WithNoteOnOnly())
	}
	p := player.New(client, opts...)

	load := func() error {
		f, err := a.readFile(path)
		if err != nil {
			return err
		}
		return p.Load(f, o.tracks...)
	}
	if err := load(); err != nil {
		return err
	}

	reload := make(chan struct{}, 1)
	if o.watch {
		go func() {
			err := watch.File(ctx, path, watch.DefaultDebounce, a.logger, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
			if err != nil {
				a.logger.Error("File watch failed", a.logger.Field().Error("error", err))
			}
		}()
	}

	echo := o.dryRun || o.verbose
	printEvent := func(ev contracts.PlayerEvent) {
		if echo {
			fmt.Fprintf(out, "%9.3fs  track %-3d %v\n", ev.Timestamp, ev.Track, ev.Message)
		}
	}
	drain := func() {
		for {
			select {
			case ev := <-events:
				printEvent(ev)
			default:
				return
			}
		}
	}

	runDone := startRun(p)
	for {
		select {
		case <-ctx.Done():
			p.Stop()
			drain()
			return nil
		case ev := <-events:
			printEvent(ev)
		case <-runDone:
			drain()
			if !o.watch {
				return nil
			}
			runDone = nil
		case <-reload:
			f, err := a.readFile(path)
			if err != nil {
				a.logger.Error("Reload failed; keeping the previous sequence", a.logger.Field().Error("error", err))
				continue
			}
			p.Stop()
			drain()
			if err := p.Load(f, o.tracks...); err != nil {
				a.logger.Error("Reload failed", a.logger.Field().Error("error", err))
				continue
			}
			runDone = startRun(p)
		}
	}
}

// startRun starts p and returns a channel closed when that run ends.
func startRun(p *player.Player) <-chan struct{} {
	p.Start()
	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	return done
}
