package player

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leandrodaf/midikit/internal/logger"
	"github.com/leandrodaf/midikit/internal/midi/memsink"
	"github.com/leandrodaf/midikit/sdk/contracts"
	"github.com/leandrodaf/midikit/sdk/message"
	"github.com/leandrodaf/midikit/sdk/smf"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func note(t *testing.T, ch int, key, vel byte) message.Message {
	t.Helper()
	m, err := message.MakeNoteOn(ch, key, vel)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// fileWith builds a single-track file with events at the given deltas.
func fileWith(t *testing.T, tpqn uint16, deltas ...uint32) *smf.File {
	t.Helper()
	f := smf.NewFile(smf.WithResolution(tpqn))
	f.AddTrack()
	for i, d := range deltas {
		if err := f.AddEvent(0, d, note(t, 1, byte(60+i), 100)); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func timestamps(p *Player) []float64 {
	var out []float64
	for _, ev := range p.Events() {
		out = append(out, ev.Timestamp)
	}
	return out
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLoadTimestamps(t *testing.T) {
	p := New(memsink.NewSink(logger.NewNopLogger()))
	if err := p.Load(fileWith(t, 480, 0, 480, 480)); err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0.5, 1.0}
	got := timestamps(p)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Fatalf("got %v, want %v", got, want)
		}
		if i > 0 && got[i] < got[i-1] {
			t.Fatalf("timestamps decrease: %v", got)
		}
	}
	if !almostEqual(p.Length(), 1.0) {
		t.Fatalf("Length = %v, want 1", p.Length())
	}
	if ev := p.Events()[1]; !almostEqual(ev.Message.Timestamp(), 0.5) {
		t.Fatalf("message timestamp %v", ev.Message.Timestamp())
	}
}

func TestTempoModel(t *testing.T) {
	p := New(memsink.NewSink(logger.NewNopLogger()), contracts.WithBPM(120), contracts.WithTicksPerBeat(480))
	if !almostEqual(p.MsPerTick(), 60000.0/120/480) {
		t.Fatalf("MsPerTick = %v", p.MsPerTick())
	}
	if got := p.TicksToSeconds(960); !almostEqual(got, 1) {
		t.Fatalf("TicksToSeconds(960) = %v", got)
	}
	if got := p.SecondsToTicks(1.5); got != 1440 {
		t.Fatalf("SecondsToTicks(1.5) = %d", got)
	}
	if err := p.SetBPM(60); err != nil {
		t.Fatal(err)
	}
	if got := p.TicksToSeconds(480); !almostEqual(got, 1) {
		t.Fatalf("after SetBPM(60): %v", got)
	}
	if err := p.SetBPM(0); !errors.Is(err, ErrInvalidTempo) {
		t.Fatalf("expected ErrInvalidTempo, got %v", err)
	}
	if err := p.SetTicksPerBeat(0); !errors.Is(err, ErrInvalidTempo) {
		t.Fatalf("expected ErrInvalidTempo, got %v", err)
	}
}

func TestSettersApplyToNextLoad(t *testing.T) {
	p := New(memsink.NewSink(logger.NewNopLogger()))
	if err := p.SetBPM(60); err != nil {
		t.Fatal(err)
	}
	if err := p.Load(fileWith(t, 480, 0, 480)); err != nil {
		t.Fatal(err)
	}
	if p.BPM() != 60 {
		t.Fatalf("BPM after Load = %v, want 60", p.BPM())
	}
	if got := timestamps(p); len(got) != 2 || !almostEqual(got[1], 1.0) {
		t.Fatalf("timestamps %v, want [0 1]", got)
	}

	// 240 ticks per beat overrides the file's 480: 480 ticks are two beats.
	if err := p.SetTicksPerBeat(240); err != nil {
		t.Fatal(err)
	}
	if err := p.Load(fileWith(t, 480, 0, 480)); err != nil {
		t.Fatal(err)
	}
	if got := timestamps(p); len(got) != 2 || !almostEqual(got[1], 2.0) {
		t.Fatalf("timestamps %v, want [0 2]", got)
	}

	if err := p.SetBPM(0); !errors.Is(err, ErrInvalidTempo) {
		t.Fatalf("SetBPM(0) = %v", err)
	}
	if err := p.SetTicksPerBeat(0); !errors.Is(err, ErrInvalidTempo) {
		t.Fatalf("SetTicksPerBeat(0) = %v", err)
	}
	if p.BPM() != 60 {
		t.Fatalf("rejected tempo changed BPM to %v", p.BPM())
	}
}

func TestTempoMetaAppliesToLaterEvents(t *testing.T) {
	f := smf.NewFile(smf.WithResolution(480))
	f.AddTrack()
	f.AddTrack()
	_ = f.AddEvent(0, 0, note(t, 1, 60, 100))
	tempo, err := message.MakeTempoBPM(60)
	if err != nil {
		t.Fatal(err)
	}
	_ = f.AddEvent(0, 480, tempo)
	_ = f.AddEvent(1, 480, note(t, 2, 62, 100))

	p := New(memsink.NewSink(logger.NewNopLogger()))
	if err := p.Load(f); err != nil {
		t.Fatal(err)
	}
	got := timestamps(p)
	if len(got) != 2 || got[0] != 0 || !almostEqual(got[1], 1.0) {
		t.Fatalf("timestamps %v, want [0 1]", got)
	}
	if p.BPM() != 60 {
		t.Fatalf("BPM after load = %v", p.BPM())
	}

	// Loading again starts from the configured tempo.
	if err := p.Load(f, 1); err != nil {
		t.Fatal(err)
	}
	if got := timestamps(p); len(got) != 1 || !almostEqual(got[0], 0.5) {
		t.Fatalf("track 1 alone: %v", got)
	}
}

func TestLoadMergesTracksByTimeThenTrack(t *testing.T) {
	f := smf.NewFile(smf.WithResolution(96), smf.WithEventTicks(smf.AbsoluteTicks))
	for i := 0; i < 3; i++ {
		f.AddTrack()
	}
	_ = f.AddEvent(2, 0, note(t, 3, 1, 1))
	_ = f.AddEvent(2, 96, note(t, 3, 2, 1))
	_ = f.AddEvent(0, 96, note(t, 1, 3, 1))
	_ = f.AddEvent(1, 48, note(t, 2, 4, 1))
	_ = f.AddEvent(1, 96, note(t, 2, 5, 1))

	p := New(memsink.NewSink(logger.NewNopLogger()))
	if err := p.Load(f); err != nil {
		t.Fatal(err)
	}
	var order []byte
	for _, ev := range p.Events() {
		order = append(order, ev.Message.Note())
	}
	want := []byte{1, 4, 3, 5, 2}
	if string(order) != string(want) {
		t.Fatalf("order %v, want %v", order, want)
	}
}

func TestLoadFilters(t *testing.T) {
	f := smf.NewFile()
	f.AddTrack()
	name, _ := message.MakeTextMetaEvent(message.MetaTrackName, "x")
	cc, _ := message.MakeControlChange(1, 7, 100)
	off, _ := message.MakeNoteOff(1, 60, 0)
	_ = f.AddEvent(0, 0, name)
	_ = f.AddEvent(0, 0, message.MakeSysEx([]byte{0x7E}))
	_ = f.AddEvent(0, 0, cc)
	_ = f.AddEvent(0, 0, note(t, 1, 60, 100))
	_ = f.AddEvent(0, 10, off)
	_ = f.AddEvent(0, 0, message.MakeEndOfTrackMetaEvent())

	all := New(memsink.NewSink(logger.NewNopLogger()))
	if err := all.Load(f); err != nil {
		t.Fatal(err)
	}
	if n := len(all.Events()); n != 3 {
		t.Fatalf("loaded %d events, want 3 channel messages", n)
	}

	onOnly := New(memsink.NewSink(logger.NewNopLogger()), contracts.WithNoteOnOnly())
	if err := onOnly.Load(f); err != nil {
		t.Fatal(err)
	}
	evs := onOnly.Events()
	if len(evs) != 1 || !evs[0].Message.IsNoteOn() {
		t.Fatalf("note-on filter kept %v", evs)
	}
}

func TestLoadRejectsBadTrack(t *testing.T) {
	p := New(memsink.NewSink(logger.NewNopLogger()))
	if err := p.Load(fileWith(t, 96, 0), 1); !errors.Is(err, smf.ErrTrackIndexOutOfRange) {
		t.Fatalf("expected ErrTrackIndexOutOfRange, got %v", err)
	}
}

func TestPlayback(t *testing.T) {
	sink := memsink.NewSink(logger.NewNopLogger())
	var started, stopped atomic.Int32
	events := make(chan contracts.PlayerEvent, 8)
	p := New(sink,
		contracts.WithStartedCallback(func() { started.Add(1) }),
		contracts.WithStoppedCallback(func() { stopped.Add(1) }),
		contracts.WithEventChannel(events),
	)
	// 25ms apart at 120 bpm and 480 tpqn.
	if err := p.Load(fileWith(t, 480, 0, 24, 24)); err != nil {
		t.Fatal(err)
	}

	begin := time.Now()
	p.Start()
	p.Wait()
	elapsed := time.Since(begin)

	if p.Running() {
		t.Fatal("still running after Wait")
	}
	if elapsed < 50*time.Millisecond {
		t.Fatalf("played in %v, want at least 50ms", elapsed)
	}
	sent := sink.Sent()
	if len(sent) != 3 {
		t.Fatalf("sent %d messages, want 3", len(sent))
	}
	for i, s := range sent {
		if s.Data[1] != byte(60+i) {
			t.Fatalf("message %d has note %d", i, s.Data[1])
		}
		if i > 0 && s.At.Before(sent[i-1].At) {
			t.Fatal("messages sent out of order")
		}
	}
	if started.Load() != 1 || stopped.Load() != 1 {
		t.Fatalf("callbacks: started %d stopped %d", started.Load(), stopped.Load())
	}
	if len(events) != 3 {
		t.Fatalf("published %d events, want 3", len(events))
	}
}

func TestStopInterruptsWait(t *testing.T) {
	sink := memsink.NewSink(logger.NewNopLogger())
	p := New(sink)
	// The second note is 10 seconds in.
	if err := p.Load(fileWith(t, 480, 0, 9600)); err != nil {
		t.Fatal(err)
	}
	p.Start()
	if !sink.WaitSent(1, time.Second) {
		t.Fatal("first note never sent")
	}
	if err := p.Load(fileWith(t, 480, 0)); !errors.Is(err, ErrPlaying) {
		t.Fatalf("Load while running: %v", err)
	}

	begin := time.Now()
	p.Stop()
	if d := time.Since(begin); d > time.Second {
		t.Fatalf("Stop took %v", d)
	}
	if p.Running() {
		t.Fatal("running after Stop")
	}
	if n := len(sink.Sent()); n != 1 {
		t.Fatalf("sent %d messages, want 1", n)
	}
	p.Stop()
}

func TestLoop(t *testing.T) {
	sink := memsink.NewSink(logger.NewNopLogger())
	p := New(sink, contracts.WithLoop(true))
	if err := p.Load(fileWith(t, 480, 0, 24)); err != nil {
		t.Fatal(err)
	}
	p.Start()
	if !sink.WaitSent(6, 2*time.Second) {
		t.Fatalf("only %d messages sent while looping", len(sink.Sent()))
	}
	p.Stop()
	if p.Running() {
		t.Fatal("running after Stop")
	}
}

func TestRestartStopsPreviousRun(t *testing.T) {
	sink := memsink.NewSink(logger.NewNopLogger())
	var stopped atomic.Int32
	p := New(sink, contracts.WithStoppedCallback(func() { stopped.Add(1) }))
	if err := p.Load(fileWith(t, 480, 0, 9600)); err != nil {
		t.Fatal(err)
	}
	p.Start()
	if !sink.WaitSent(1, time.Second) {
		t.Fatal("first note never sent")
	}
	p.Start()
	if stopped.Load() != 1 {
		t.Fatalf("first run not joined before restart: %d stops", stopped.Load())
	}
	if !sink.WaitSent(2, time.Second) {
		t.Fatal("second run did not start")
	}
	p.Stop()
	if stopped.Load() != 2 {
		t.Fatalf("stops = %d, want 2", stopped.Load())
	}
}

func TestSendFailureIsLoggedAndPlaybackContinues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := logger.NewWithCore(core)
	sink := memsink.NewSink(logger.NewNopLogger())
	sink.FailNext(1, errors.New("cable unplugged"))

	p := New(sink, contracts.WithPlayerLogger(l))
	if err := p.Load(fileWith(t, 480, 0, 0, 0)); err != nil {
		t.Fatal(err)
	}
	p.Start()
	p.Wait()

	if n := len(sink.Sent()); n != 2 {
		t.Fatalf("sent %d messages, want 2", n)
	}
	failures := logs.FilterMessage("Failed to send MIDI message").All()
	if len(failures) != 1 || failures[0].Level != zapcore.ErrorLevel {
		t.Fatalf("failure log entries: %v", failures)
	}
}

func TestFullEventChannelDrops(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	events := make(chan contracts.PlayerEvent, 1)
	p := New(memsink.NewSink(logger.NewNopLogger()),
		contracts.WithPlayerLogger(logger.NewWithCore(core)),
		contracts.WithEventChannel(events))
	if err := p.Load(fileWith(t, 480, 0, 0, 0)); err != nil {
		t.Fatal(err)
	}
	p.Start()
	p.Wait()
	if len(events) != 1 {
		t.Fatalf("channel holds %d events", len(events))
	}
	if n := logs.FilterMessage("Event buffer full, dropping player event").Len(); n != 2 {
		t.Fatalf("%d drop warnings, want 2", n)
	}
}
