// Package session drives one gnuplot process over a pipe to its standard
// input.
//
// A Session owns the process, the input sink and a dataset name counter.
// Every public write produces one complete protocol message (a command
// line, a plot directive together with its binary payload, or a whole
// here-document) and hands it to the sink in a single write, so messages
// never interleave. gnuplot has no way to resynchronise once its input is
// malformed: messages that fail validation are rejected before any byte is
// written, and nothing is ever retried.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/timvw/plotpipe/internal/codec"
	telem "github.com/timvw/plotpipe/internal/otel"
	"github.com/timvw/plotpipe/internal/sink"
)

// DefaultProgram is the executable spawned when Options.Program is empty.
const DefaultProgram = "gnuplot"

// DefaultFlushLines is the number of comment lines Flush writes. It must
// exceed gnuplot's stdin read buffer.
const DefaultFlushLines = 250

// Options configures a Session.
type Options struct {
	Program string   // defaults to DefaultProgram
	Args    []string // extra arguments, after -p
	Persist bool     // pass -p so plot windows outlive the session

	// Stdout and Stderr receive the process output. os/exec drains them
	// on its own goroutines. Default to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	Endian       codec.Endian
	FlushLines   int           // 0 means DefaultFlushLines
	StartupDelay time.Duration // wait after spawn before accepting writes

	Logger  *slog.Logger
	Metrics *telem.Metrics
}

func (o Options) withDefaults() Options {
	if o.Program == "" {
		o.Program = DefaultProgram
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.FlushLines <= 0 {
		o.FlushLines = DefaultFlushLines
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// commandArgs returns the argument list for the program.
func (o Options) commandArgs() []string {
	var args []string
	if o.Persist {
		args = append(args, "-p")
	}
	return append(args, o.Args...)
}

// Status describes the process after Wait.
type Status struct {
	Exited   bool // false when the wait ended before the process did
	ExitCode int  // -1 if the process was killed by a signal
}

// Session is a running gnuplot plus its input pipe.
type Session struct {
	mu   sync.Mutex
	sink *sink.Sink
	err  error // first error from Issue

	endian     codec.Endian
	flushLines int
	log        *slog.Logger
	metrics    *telem.Metrics

	names atomic.Uint64

	cmd     *exec.Cmd
	started time.Time
	done    chan struct{}
	status  Status
	waitErr error
}

// Open spawns the program and returns a session ready for writes.
func Open(ctx context.Context, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	cmd := exec.Command(opts.Program, opts.commandArgs()...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &SpawnError{Program: opts.Program, Err: err}
	}
	if err := cmd.Start(); err != nil {
		opts.Metrics.RecordSessionEvent(ctx, "spawn_error")
		return nil, &SpawnError{Program: opts.Program, Err: err}
	}

	s := newSession(stdin, opts)
	s.cmd = cmd
	s.started = time.Now()
	go s.reap()

	s.log.Info("spawned", "program", opts.Program, "pid", cmd.Process.Pid, "persist", opts.Persist)
	opts.Metrics.RecordSessionEvent(ctx, "spawn")

	if opts.StartupDelay > 0 {
		timer := time.NewTimer(opts.StartupDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			_ = s.Close()
			_ = s.Kill()
			return nil, ctx.Err()
		}
	}
	return s, nil
}

// Attach returns a session writing to w without a process, e.g. a file
// of gnuplot commands or a test buffer. Wait returns immediately.
func Attach(w io.WriteCloser, opts Options) *Session {
	s := newSession(w, opts.withDefaults())
	s.status = Status{Exited: true}
	close(s.done)
	return s
}

func newSession(w io.WriteCloser, opts Options) *Session {
	return &Session{
		sink:       sink.New(w),
		endian:     opts.Endian,
		flushLines: opts.FlushLines,
		log:        opts.Logger,
		metrics:    opts.Metrics,
		done:       make(chan struct{}),
	}
}

// reap owns cmd.Wait and publishes the result by closing done.
func (s *Session) reap() {
	err := s.cmd.Wait()

	st := Status{Exited: true}
	if ps := s.cmd.ProcessState; ps != nil {
		st.ExitCode = ps.ExitCode()
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		s.waitErr = err
	}
	s.status = st

	s.log.Info("exited", "pid", s.cmd.Process.Pid, "code", st.ExitCode)
	s.metrics.RecordExit(context.Background(), time.Since(s.started).Seconds(), st.ExitCode)
	close(s.done)
}

// Pid returns the process id, or 0 for an attached session.
func (s *Session) Pid() int {
	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// Exited reports without blocking whether the process has terminated.
func (s *Session) Exited() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Close closes the input pipe, which gnuplot reads as end of input.
// It does not wait for the process. Calling Close again is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sink.Closed() {
		return nil
	}
	err := s.sink.Close()
	s.log.Debug("closed input", "bytes", s.sink.Written())
	s.metrics.RecordSessionEvent(context.Background(), "close")
	if err != nil {
		return fmt.Errorf("close gnuplot input: %w", err)
	}
	return nil
}

// Wait blocks until the process exits or ctx is done. When ctx ends first
// the returned Status has Exited false and the process keeps running.
// A non-zero exit is reported in Status, not as an error.
func (s *Session) Wait(ctx context.Context) (Status, error) {
	select {
	case <-s.done:
		return s.status, s.waitErr
	case <-ctx.Done():
		return Status{}, nil
	}
}

// WaitTimeout is Wait with a deadline of d from now.
func (s *Session) WaitTimeout(d time.Duration) (Status, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return s.Wait(ctx)
}

// Kill terminates the process. Nothing in this package calls it
// implicitly.
func (s *Session) Kill() error {
	if s.cmd == nil || s.Exited() {
		return nil
	}
	if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill %s: %w", s.cmd.Path, err)
	}
	return nil
}

// UniqueDatasetName returns data0, data1, ... Names are never reused
// within a session.
func (s *Session) UniqueDatasetName() string {
	n := s.names.Add(1) - 1
	return "data" + strconv.FormatUint(n, 10)
}

// Run opens a session, passes it to fn, then closes it and waits for the
// process to exit. A non-zero exit status is returned as an error.
func Run(ctx context.Context, opts Options, fn func(*Session) error) error {
	s, err := Open(ctx, opts)
	if err != nil {
		return err
	}
	fnErr := fn(s)
	closeErr := s.Close()
	if fnErr != nil {
		_ = s.Kill()
		return fnErr
	}
	if closeErr != nil {
		return closeErr
	}

	st, err := s.Wait(ctx)
	if err != nil {
		return err
	}
	if !st.Exited {
		return ctx.Err()
	}
	if st.ExitCode != 0 {
		return fmt.Errorf("%s exited with status %d", s.cmd.Path, st.ExitCode)
	}
	return nil
}
