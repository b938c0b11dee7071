package smf

import (
	"github.com/leandrodaf/midikit/internal/logger"
	"github.com/leandrodaf/midikit/sdk/contracts"
)

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithTickMode selects how the reader stores event ticks. The default is
// DeltaTicks.
func WithTickMode(mode TickMode) ReaderOption {
	return func(r *Reader) {
		r.mode = mode
	}
}

// WithReaderLogger sets the logger used for header diagnostics.
func WithReaderLogger(l contracts.Logger) ReaderOption {
	return func(r *Reader) {
		r.logger = l
	}
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithWriterTicksPerQuarterNote overrides the resolution stored in the file
// being written.
func WithWriterTicksPerQuarterNote(tpqn uint16) WriterOption {
	return func(w *Writer) {
		w.ticksPerQuarterNote = tpqn
	}
}

// WithWriterLogger sets the logger used by the writer.
func WithWriterLogger(l contracts.Logger) WriterOption {
	return func(w *Writer) {
		w.logger = l
	}
}

func defaultLogger(l contracts.Logger) contracts.Logger {
	if l == nil {
		return logger.NewNopLogger()
	}
	return l
}
