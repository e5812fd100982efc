package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/cloudchase/bitrun/logger"
)

// DefaultWaitDelay bounds how long Run waits for the output pipes to drain
// after the child has exited or been killed.
const DefaultWaitDelay = 2 * time.Second

// LineHandler receives each complete output line of the inference binary,
// in arrival order, with the line terminator removed.
type LineHandler func(line string)

// Result describes a finished run.
type Result struct {
	ExitCode  int
	StartedAt time.Time
	EndedAt   time.Time
}

// Elapsed returns the wall-clock duration of the run.
func (r Result) Elapsed() time.Duration { return r.EndedAt.Sub(r.StartedAt) }

// Launcher starts the inference binary and streams its merged
// stdout/stderr to an output writer and a line handler.
type Launcher struct {
	binary    string
	stdin     io.Reader
	out       io.Writer
	handler   LineHandler
	waitDelay time.Duration
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithOutput sets the writer that receives the raw output of the binary.
func WithOutput(w io.Writer) Option {
	return func(l *Launcher) { l.out = w }
}

// WithInput attaches r to the child's stdin, needed for conversation mode.
func WithInput(r io.Reader) Option {
	return func(l *Launcher) { l.stdin = r }
}

// WithLineHandler sets the per-line callback.
func WithLineHandler(h LineHandler) Option {
	return func(l *Launcher) { l.handler = h }
}

// WithWaitDelay overrides DefaultWaitDelay.
func WithWaitDelay(d time.Duration) Option {
	return func(l *Launcher) { l.waitDelay = d }
}

// New creates a Launcher for the executable at binary.
func New(binary string, opts ...Option) *Launcher {
	l := &Launcher{binary: binary, waitDelay: DefaultWaitDelay}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Binary returns the path of the executable the launcher starts.
func (l *Launcher) Binary() string { return l.binary }

// Run starts exactly one child process for p and blocks until it exits.
//
// A failure to start returns *LaunchError, a non-zero exit returns
// *ExitError and cancellation of ctx, even before the child has started,
// returns ErrInterrupted. Cancellation sends the child SIGINT. Output read
// before the failure has already been delivered.
func (l *Launcher) Run(ctx context.Context, p Params) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	args := BuildArgs(p)
	cmd := exec.CommandContext(ctx, l.binary, args...) //nolint:gosec // binary path comes from local config
	lw := newLineWriter(l.out, l.handler)
	cmd.Stdin = l.stdin
	cmd.Stdout = lw
	cmd.Stderr = lw
	cmd.WaitDelay = l.waitDelay
	// llama-cli prints its timing lines on SIGINT, so cancellation asks
	// politely first. WaitDelay kills it if it does not exit.
	cmd.Cancel = func() error {
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}

	logger.Log.Debug("starting inference binary", "binary", l.binary, "args", args)

	res := Result{StartedAt: time.Now()}
	if err := cmd.Start(); err != nil {
		res.EndedAt = time.Now()
		if ctx.Err() != nil {
			return res, ErrInterrupted
		}
		return res, &LaunchError{Path: l.binary, Err: err}
	}

	err := cmd.Wait()
	lw.Flush()
	res.EndedAt = time.Now()
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	logger.Log.Debug("inference binary finished", "exit_code", res.ExitCode, "elapsed", res.Elapsed().String())

	if ctx.Err() != nil {
		return res, ErrInterrupted
	}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if interruptedBySignal(exitErr) {
			return res, ErrInterrupted
		}
		return res, &ExitError{Code: exitErr.ExitCode()}
	}
	if errors.Is(err, exec.ErrWaitDelay) && res.ExitCode == 0 {
		logger.Log.Warn("inference output pipes were still open after exit")
		return res, nil
	}
	return res, fmt.Errorf("wait for inference binary: %w", err)
}

// interruptedBySignal reports whether the child died from SIGINT or exited
// with 130. A terminal Ctrl+C reaches the child directly and can beat the
// context cancellation.
func interruptedBySignal(err *exec.ExitError) bool {
	if err.ExitCode() == 130 {
		return true
	}
	ws, ok := err.Sys().(syscall.WaitStatus)
	return ok && ws.Signaled() && ws.Signal() == syscall.SIGINT
}
