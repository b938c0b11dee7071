// Package player turns tick-timed tracks into real-time playback against a
// contracts.Output.
package player

import (
	"cmp"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/leandrodaf/midikit/internal/logger"
	"github.com/leandrodaf/midikit/sdk/contracts"
	"github.com/leandrodaf/midikit/sdk/message"
	"github.com/leandrodaf/midikit/sdk/smf"
)

// Error definitions for the player.
var (
	ErrPlaying      = errors.New("player is running")
	ErrInvalidTempo = errors.New("invalid tempo")
)

const defaultSpinThreshold = time.Millisecond

// Player schedules the channel messages of a loaded sequence onto an output.
// Load, Start and Stop are meant to be called from one goroutine; playback
// runs on its own goroutine locked to an OS thread.
type Player struct {
	id     uuid.UUID
	out    contracts.Output
	opts   contracts.PlayerOptions
	logger contracts.Logger

	mu     sync.Mutex
	tempo  tempo
	events []contracts.PlayerEvent
	length float64
	stopCh chan struct{}
	done   chan struct{}

	running  atomic.Bool
	stopping atomic.Bool
}

// New creates a player that sends to out.
func New(out contracts.Output, opts ...contracts.PlayerOption) *Player {
	options := contracts.PlayerOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = logger.NewNopLogger()
	}
	if !(options.BPM > 0) {
		options.BPM = defaultBPM
	}
	if options.SpinThreshold <= 0 {
		options.SpinThreshold = defaultSpinThreshold
	}

	tpb := float64(smf.DefaultTicksPerQuarterNote)
	if options.TicksPerBeat > 0 {
		tpb = float64(options.TicksPerBeat)
	}
	id := uuid.New()
	p := &Player{
		id:     id,
		out:    out,
		opts:   options,
		logger: options.Logger.With(options.Logger.Field().String("player", id.String())),
		tempo:  newTempo(options.BPM, tpb),
	}
	p.logger.Debug("Player created")
	return p
}

// ID identifies the player in logs.
func (p *Player) ID() uuid.UUID { return p.id }

// SetBPM changes the current tempo and the starting tempo of every later
// Load. Already loaded events keep their timestamps.
func (p *Player) SetBPM(bpm float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.tempo.setBPM(bpm); err != nil {
		return err
	}
	p.opts.BPM = bpm
	return nil
}

// SetTicksPerBeat changes the current resolution and overrides the file's in
// every later Load, as WithTicksPerBeat does.
func (p *Player) SetTicksPerBeat(tpb uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.tempo.setTicksPerBeat(float64(tpb)); err != nil {
		return err
	}
	p.opts.TicksPerBeat = tpb
	return nil
}

// BPM returns the current tempo.
func (p *Player) BPM() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tempo.bpm
}

// MsPerTick returns the length of one tick in milliseconds.
func (p *Player) MsPerTick() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tempo.msPerTick
}

// TicksToSeconds converts a tick count with the current tempo.
func (p *Player) TicksToSeconds(ticks float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tempo.ticksToSeconds(ticks)
}

// SecondsToTicks converts seconds to whole ticks with the current tempo.
func (p *Player) SecondsToTicks(seconds float64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tempo.secondsToTicks(seconds)
}

// Load flattens the given tracks of f (all tracks when none are named) into
// the player's event list.
//
// The tempo is reset to the starting BPM (WithBPM or SetBPM) and the
// resolution to the file's unless WithTicksPerBeat or SetTicksPerBeat
// overrode it. Tracks are walked in order; a tempo
// meta-event changes the tempo used for every conversion after it, including
// those of later tracks. Ticks are converted as a whole at the tempo in
// effect, so a mid-sequence tempo change does not re-time what came before.
// Meta-events, sysex and messages rejected by the filter are skipped. The
// result is ordered by timestamp, ties broken by track index.
func (p *Player) Load(f *smf.File, tracks ...int) error {
	if p.running.Load() {
		return ErrPlaying
	}
	if len(tracks) == 0 {
		for i := range f.Tracks {
			tracks = append(tracks, i)
		}
	}
	for _, i := range tracks {
		if i < 0 || i >= f.NumTracks() {
			return fmt.Errorf("%w: %d (file has %d tracks)", smf.ErrTrackIndexOutOfRange, i, f.NumTracks())
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tpb := float64(f.TicksPerQuarterNote)
	if p.opts.TicksPerBeat > 0 {
		tpb = float64(p.opts.TicksPerBeat)
	}
	if tpb <= 0 {
		tpb = smf.DefaultTicksPerQuarterNote
	}
	p.tempo = newTempo(p.opts.BPM, tpb)

	var (
		events  []contracts.PlayerEvent
		endTick uint32
	)
	for _, ti := range tracks {
		var (
			abs  uint32
			last float64
		)
		for _, ev := range f.Tracks[ti] {
			if f.TickMode == smf.AbsoluteTicks {
				abs = ev.Tick
			} else {
				abs += ev.Tick
			}
			endTick = max(endTick, abs)

			m := ev.Message
			if m.IsTempo() {
				p.applyTempo(m, ti)
				continue
			}
			if !m.IsChannel() || !p.opts.Filter.Allows(m) {
				continue
			}

			// A tempo change can pull later ticks earlier; keep the track
			// in order.
			ts := max(p.tempo.ticksToSeconds(float64(abs)), last)
			last = ts
			events = append(events, contracts.PlayerEvent{
				Timestamp: ts,
				Track:     ti,
				Message:   m.WithTimestamp(ts),
			})
		}
	}

	slices.SortStableFunc(events, func(a, b contracts.PlayerEvent) int {
		if c := cmp.Compare(a.Timestamp, b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.Track, b.Track)
	})

	p.events = events
	p.length = p.tempo.ticksToSeconds(float64(endTick))

	p.logger.Info("Sequence loaded",
		p.logger.Field().Int("tracks", len(tracks)),
		p.logger.Field().Int("events", len(events)),
		p.logger.Field().Float64("seconds", p.length),
		p.logger.Field().Float64("bpm", p.tempo.bpm))
	return nil
}

func (p *Player) applyTempo(m message.Message, track int) {
	ev, err := message.DecodeMeta(m)
	if err != nil {
		p.logger.Warn("Ignoring malformed tempo event",
			p.logger.Field().Int("track", track),
			p.logger.Field().Error("error", err))
		return
	}
	bpm := ev.(message.Tempo).BPM()
	if err := p.tempo.setBPM(bpm); err != nil {
		p.logger.Warn("Ignoring tempo event", p.logger.Field().Error("error", err))
		return
	}
	p.logger.Debug("Tempo change", p.logger.Field().Int("track", track), p.logger.Field().Float64("bpm", bpm))
}

// Events returns a copy of the loaded event list.
func (p *Player) Events() []contracts.PlayerEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}

// Length is the duration in seconds of the loaded tracks, end-of-track
// events included.
func (p *Player) Length() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.length
}

// Running reports whether a playback goroutine is active.
func (p *Player) Running() bool { return p.running.Load() }

// Start begins playback of the loaded events. A run that is still active is
// stopped and joined first, so at most one run exists at a time.
func (p *Player) Start() {
	p.Stop()

	p.mu.Lock()
	events := p.events
	stop := make(chan struct{})
	done := make(chan struct{})
	p.stopCh, p.done = stop, done
	p.stopping.Store(false)
	p.running.Store(true)
	p.mu.Unlock()

	go p.run(events, stop, done)

	p.logger.Info("Playback started",
		p.logger.Field().Int("events", len(events)),
		p.logger.Field().Bool("loop", p.opts.Loop))
	if p.opts.OnStarted != nil {
		p.opts.OnStarted()
	}
}

// Stop asks the active run to end and waits for it. It wakes a run that is
// sleeping towards its next event; a run that is already spinning finishes
// that wait first. Stop must not be called from the player callbacks.
func (p *Player) Stop() {
	p.mu.Lock()
	stop, done := p.stopCh, p.done
	p.stopCh = nil
	p.mu.Unlock()
	if stop == nil {
		return
	}

	p.stopping.Store(true)
	close(stop)
	<-done
}

// Wait blocks until the current run ends on its own or is stopped. It
// returns at once when nothing was started.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (p *Player) run(events []contracts.PlayerEvent, stop <-chan struct{}, done chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(done)
	defer p.running.Store(false)

	for pass := 0; ; pass++ {
		completed := p.playOnce(events, stop)
		if !completed || !p.opts.Loop || len(events) == 0 {
			break
		}
		p.logger.Debug("Looping sequence", p.logger.Field().Int("pass", pass+1))
	}

	p.logger.Info("Playback stopped")
	if p.opts.OnStopped != nil {
		p.opts.OnStopped()
	}
}

// playOnce dispatches every event once. It returns false when stopped.
func (p *Player) playOnce(events []contracts.PlayerEvent, stop <-chan struct{}) bool {
	start := time.Now()
	for _, ev := range events {
		deadline := start.Add(time.Duration(ev.Timestamp * float64(time.Second)))
		if !p.waitUntil(deadline, stop) || p.stopping.Load() {
			return false
		}

		if err := p.out.Send(ev.Message.Bytes()); err != nil {
			p.logger.Error("Failed to send MIDI message",
				p.logger.Field().Int("track", ev.Track),
				p.logger.Field().Float64("timestamp", ev.Timestamp),
				p.logger.Field().String("message", ev.Message.String()),
				p.logger.Field().Error("error", err))
			continue
		}
		p.publish(ev)
	}
	return true
}

// waitUntil sleeps to within the spin threshold of deadline, then spins on
// the monotonic clock. Only the sleep can be interrupted by stop.
func (p *Player) waitUntil(deadline time.Time, stop <-chan struct{}) bool {
	if d := time.Until(deadline) - p.opts.SpinThreshold; d > 0 {
		t := time.NewTimer(d)
		select {
		case <-stop:
			t.Stop()
			return false
		case <-t.C:
		}
	}
	for time.Now().Before(deadline) {
	}
	return true
}

func (p *Player) publish(ev contracts.PlayerEvent) {
	if p.opts.Events == nil {
		return
	}
	select {
	case p.opts.Events <- ev:
	default:
		p.logger.Warn("Event buffer full, dropping player event",
			p.logger.Field().Int("track", ev.Track),
			p.logger.Field().Float64("timestamp", ev.Timestamp))
	}
}
