package player

import "fmt"

const defaultBPM = 120

// tempo converts ticks to wall-clock time. msPerTick is recomputed whenever
// either parameter changes.
type tempo struct {
	bpm          float64
	ticksPerBeat float64
	msPerTick    float64
}

func newTempo(bpm, ticksPerBeat float64) tempo {
	t := tempo{bpm: bpm, ticksPerBeat: ticksPerBeat}
	t.update()
	return t
}

func (t *tempo) update() {
	t.msPerTick = 60000 / t.bpm / t.ticksPerBeat
}

func (t *tempo) setBPM(bpm float64) error {
	if !(bpm > 0) {
		return fmt.Errorf("%w: %v bpm", ErrInvalidTempo, bpm)
	}
	t.bpm = bpm
	t.update()
	return nil
}

func (t *tempo) setTicksPerBeat(tpb float64) error {
	if !(tpb > 0) {
		return fmt.Errorf("%w: %v ticks per beat", ErrInvalidTempo, tpb)
	}
	t.ticksPerBeat = tpb
	t.update()
	return nil
}

func (t tempo) ticksToSeconds(ticks float64) float64 {
	return ticks / t.ticksPerBeat * 60 / t.bpm
}

// secondsToTicks truncates toward zero.
func (t tempo) secondsToTicks(seconds float64) int {
	return int(seconds * t.bpm * t.ticksPerBeat / 60)
}
