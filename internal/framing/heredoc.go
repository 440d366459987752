package framing

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
)

// Heredoc writes the named here-document for values to w:
//
//	$name << EOD
//	1 2 3
//	4 5 6
//
//	EOD
//
// The document is rendered in memory and written with a single call, so a
// framing error leaves w untouched.
func Heredoc(w io.Writer, name string, values iter.Seq[float64], layout Layout) error {
	buf, err := AppendHeredoc(nil, name, values, layout)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// AppendHeredoc appends the here-document to dst. On error dst is returned
// unchanged.
//
// A bounded level that runs out of values fails with ErrInsufficientData,
// and so does empty input when any level is bounded. Empty input under an
// all-unbounded layout is an empty document.
// A partial unit under an unbounded level that already produced a complete
// unit, or values left over once the outermost level is done, fail with
// ErrExcessData.
func AppendHeredoc(dst []byte, name string, values iter.Seq[float64], layout Layout) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return dst, err
	}
	if err := layout.Validate(); err != nil {
		return dst, fmt.Errorf("heredoc $%s: %w", name, err)
	}

	next, stop := iter.Pull(values)
	defer stop()

	e := &emitter{
		buf:    append(dst, '$'),
		in:     &lookahead{next: next},
		fields: layout.Fields,
		levels: [3]Bound{layout.Frames, layout.Blocks, layout.Records},
	}
	e.buf = append(e.buf, name...)
	e.buf = append(e.buf, " << EOD\n"...)

	var err error
	if layout.Shaped() && !e.in.more() {
		err = ErrInsufficientData
	} else {
		err = e.emit(0)
	}
	if err == nil && e.in.more() {
		err = ErrExcessData
	}
	if err != nil {
		return dst[:len(dst):len(dst)], fmt.Errorf("heredoc $%s: %w after %d value(s)", name, err, e.in.consumed)
	}
	return append(e.buf, "EOD\n"...), nil
}

// ValidateName rejects names gnuplot would not parse as a datablock name.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("dataset name is empty")
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return fmt.Errorf("invalid dataset name %q", name)
		}
	}
	return nil
}

// lookahead lets the emitter ask whether values remain without consuming.
type lookahead struct {
	next     func() (float64, bool)
	peeked   bool
	v        float64
	ok       bool
	consumed int
}

func (l *lookahead) more() bool {
	if !l.peeked {
		l.v, l.ok = l.next()
		l.peeked = true
	}
	return l.ok
}

func (l *lookahead) take() (float64, bool) {
	if !l.more() {
		return 0, false
	}
	l.peeked = false
	l.consumed++
	return l.v, true
}

type emitter struct {
	buf    []byte
	in     *lookahead
	fields int
	levels [3]Bound // frames, blocks, records
}

const (
	levelFrames = iota
	levelBlocks
	levelRecords
)

func (e *emitter) emit(depth int) error {
	if depth == len(e.levels) {
		return e.record()
	}
	n, bounded := e.levels[depth].Size()
	for i := 0; ; i++ {
		if bounded {
			if i >= n {
				return nil
			}
			if !e.in.more() {
				return ErrInsufficientData
			}
		} else if !e.in.more() {
			return nil
		}

		mark := len(e.buf)
		if depth == levelFrames && i > 0 {
			e.buf = append(e.buf, '\n')
		}
		if err := e.emit(depth + 1); err != nil {
			if errors.Is(err, ErrInsufficientData) && !bounded && i > 0 {
				e.buf = e.buf[:mark]
				return ErrExcessData
			}
			return err
		}
		if depth == levelBlocks {
			e.buf = append(e.buf, '\n')
		}
	}
}

func (e *emitter) record() error {
	for i := 0; i < e.fields; i++ {
		v, ok := e.in.take()
		if !ok {
			return ErrInsufficientData
		}
		if i > 0 {
			e.buf = append(e.buf, ' ')
		}
		e.buf = strconv.AppendFloat(e.buf, v, 'g', -1, 64)
	}
	e.buf = append(e.buf, '\n')
	return nil
}
