package session

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/timvw/plotpipe/internal/codec"
	"github.com/timvw/plotpipe/internal/framing"
	telem "github.com/timvw/plotpipe/internal/otel"
)

const flushComment = "# flushing gnuplot input buffer\n"

// send writes one complete message and pushes it down the pipe.
func (s *Session) send(kind string, msg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.sink.Write(msg); err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	if err := s.sink.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	s.log.Debug("sent", "kind", kind, "bytes", len(msg))
	s.metrics.RecordMessage(context.Background(), kind, len(msg))
	return nil
}

func (s *Session) reject(kind string, err error) error {
	s.log.Warn("rejected message", "kind", kind, "error", err)
	s.metrics.RecordFramingError(context.Background(), kind)
	return err
}

// Command writes text followed by a newline. The text is not inspected.
func (s *Session) Command(text string) error {
	msg := make([]byte, 0, len(text)+1)
	msg = append(msg, text...)
	msg = append(msg, '\n')
	return s.send(telem.KindCommand, msg)
}

// Issue is Command for chaining:
//
//	s.Issue("set title 'sin'").Issue("set grid")
//
// After the first failure later calls do nothing; Err returns the failure.
func (s *Session) Issue(text string) *Session {
	if s.err != nil {
		return s
	}
	s.err = s.Command(text)
	return s
}

// Err returns the first error recorded by Issue.
func (s *Session) Err() error {
	return s.err
}

// Plot1D plots values read inline as binary. With inferCoordinates the
// values are Y values and gnuplot numbers them (array framing); otherwise
// values are interleaved x, y pairs (record framing).
func (s *Session) Plot1D(values []float32, style string, inferCoordinates bool) error {
	if len(values) == 0 {
		return s.reject(telem.KindPlot, countMismatch("plot", 0, 1))
	}
	clause := framing.ArrayDirect.Clause(len(values))
	if !inferCoordinates {
		if len(values)%2 != 0 {
			return s.reject(telem.KindPlot, countMismatch("plot x,y pairs", len(values), len(values)-1))
		}
		clause = framing.RecordDirect.Clause(len(values) / 2)
	}
	return s.plotBinary(telem.KindPlot, "plot", clause, style, values)
}

// PlotGrid surface-plots a width x height grid supplied in row-major order
// (x outer, y fastest). With inferCoordinates the values are z values
// (array framing, transposed to match the scan order); otherwise they are
// x, y, z triples (record framing).
func (s *Session) PlotGrid(values []float32, width, height int, style string, inferCoordinates bool) error {
	f := framing.RecordDirect
	if inferCoordinates {
		f = framing.ArrayTransposed
	}
	return s.PlotGridFramed(values, width, height, style, f)
}

// PlotGridFramed is PlotGrid with an explicit framing.
func (s *Session) PlotGridFramed(values []float32, width, height int, style string, f framing.Framing) error {
	if width < 1 || height < 1 {
		return s.reject(telem.KindSplot, fmt.Errorf("splot: %w: grid %dx%d", ErrFramingMismatch, width, height))
	}
	perPoint := 1
	if f.Kind == framing.Record {
		perPoint = 3
	}
	if want := width * height * perPoint; len(values) != want {
		return s.reject(telem.KindSplot, countMismatch("splot", len(values), want))
	}
	return s.plotBinary(telem.KindSplot, "splot", f.GridClause(width, height), style, values)
}

func (s *Session) plotBinary(kind, command, clause, style string, values []float32) error {
	d := framing.Directive{
		Command: command,
		Endian:  s.endian,
		Clause:  clause,
		Style:   style,
	}
	msg := make([]byte, 0, len(command)+len(clause)+len(style)+32+len(values)*codec.Size)
	msg = d.Append(msg)
	msg = codec.AppendFloats(msg, values, s.endian.Order())
	return s.send(kind, msg)
}

// Binary returns the "'-' binary ..." data source for a directive the
// caller writes itself, using the session byte order. The payload must
// follow with WriteFloats.
func (s *Session) Binary(f framing.Framing, dims ...int) string {
	return framing.Binary(s.endian, f.Clause(dims...))
}

// WriteFloats writes raw binary values in the session byte order.
func (s *Session) WriteFloats(values ...float32) error {
	return s.send(telem.KindRaw, codec.AppendFloats(nil, values, s.endian.Order()))
}

// DefineDataset sends values as the here-document $name. Nothing is
// written if the values do not fit layout.
func (s *Session) DefineDataset(name string, values iter.Seq[float64], layout framing.Layout) error {
	msg, err := framing.AppendHeredoc(nil, name, values, layout)
	if err != nil {
		if errors.Is(err, framing.ErrInsufficientData) || errors.Is(err, framing.ErrExcessData) {
			err = fmt.Errorf("%w: %w", ErrFramingMismatch, err)
		}
		return s.reject(telem.KindHeredoc, err)
	}
	return s.send(telem.KindHeredoc, msg)
}

// Heredoc defines values under a fresh name and returns the reference to
// use in later commands, e.g. "$data0".
func (s *Session) Heredoc(values iter.Seq[float64], layout framing.Layout) (string, error) {
	name := s.UniqueDatasetName()
	if err := s.DefineDataset(name, values, layout); err != nil {
		return "", err
	}
	return "$" + name, nil
}

// Undefine drops the here-document $name.
func (s *Session) Undefine(name string) error {
	name = strings.TrimPrefix(name, "$")
	if err := framing.ValidateName(name); err != nil {
		return err
	}
	return s.send(telem.KindUndefine, []byte("undefine $"+name+"\n"))
}

// Flush makes gnuplot act on everything sent so far without closing the
// pipe. gnuplot only processes its input once enough bytes accumulate, so
// Flush pads the stream with inert comment lines. Use it between frames of
// an animation.
func (s *Session) Flush() error {
	return s.send(telem.KindFlush, []byte(strings.Repeat(flushComment, s.flushLines)))
}
