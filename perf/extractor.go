package perf

import (
	"io"
	"strings"
	"time"
)

// Markers are the console substrings the extractor keys on.
type Markers struct {
	// GenerationStart marks the point where llama-cli begins generating.
	GenerationStart string
	// ResponsePrefix starts a conversational turn.
	ResponsePrefix string
	// SystemPrefixes mark runtime log lines that never end a turn.
	SystemPrefixes []string
}

// DefaultMarkers returns the markers printed by llama-cli.
func DefaultMarkers() Markers {
	return Markers{
		GenerationStart: "generate: n_ctx",
		ResponsePrefix:  "> ",
		SystemPrefixes: []string{
			"llama_", "main:", "generate:", "system_info", "sampler", "load", "print_info", "==",
		},
	}
}

func (m Markers) isSystem(line string) bool {
	for _, p := range m.SystemPrefixes {
		if p != "" && strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// Labels are static descriptions of the build printed in every summary.
// Empty labels are omitted.
type Labels struct {
	Optimizations string
	Model         string
}

// DefaultLabels describes the ARM-optimised BitNet build.
func DefaultLabels() Labels {
	return Labels{
		Optimizations: "ARM dot product optimizations: ENABLED",
		Model:         "BitNet 2B (ARM-optimized)",
	}
}

// Config controls what the extractor tracks and how it reports.
type Config struct {
	Threads      int
	Conversation bool
	Markers      Markers
	Labels       Labels
}

// TurnState is the conversation turn tracker's state.
type TurnState int

const (
	Idle TurnState = iota
	InAssistantResponse
)

func (s TurnState) String() string {
	if s == InAssistantResponse {
		return "in-response"
	}
	return "idle"
}

// Outcome tells Finish which summary to print.
type Outcome int

const (
	Completed Outcome = iota
	Interrupted
)

// Summary is a snapshot of the run state.
type Summary struct {
	Threads           int
	Conversation      bool
	Elapsed           time.Duration
	Lines             int
	GenerationStarted bool
	TimeToGeneration  time.Duration
	PromptEval        Sample
	Eval              Sample
	Responses         int
	State             TurnState
	Interrupted       bool
}

// Extractor consumes llama-cli output one line at a time and prints
// per-response and end-of-run reports to its writer. It is not safe for
// concurrent use; the launcher delivers lines from a single goroutine.
type Extractor struct {
	cfg Config
	rep *reporter
	now func() time.Time

	startedAt         time.Time
	lines             int
	generationStarted bool
	generationAt      time.Time

	state          TurnState
	responses      int
	turnStartedAt  time.Time
	lastResponseAt time.Time

	promptEval Sample
	eval       Sample

	finished    bool
	endedAt     time.Time
	interrupted bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// NewExtractor returns an extractor whose run clock starts now.
func NewExtractor(out io.Writer, cfg Config, opts ...Option) *Extractor {
	e := &Extractor{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	e.rep = newReporter(out, cfg.Labels)
	e.startedAt = e.now()
	e.promptEval.Phase = PhasePromptEval
	e.eval.Phase = PhaseEval
	return e
}

// Observe processes one output line.
func (e *Extractor) Observe(line string) {
	if e.finished {
		return
	}
	e.lines++

	if !e.generationStarted && e.cfg.Markers.GenerationStart != "" &&
		strings.Contains(line, e.cfg.Markers.GenerationStart) {
		e.generationStarted = true
		e.generationAt = e.now()
	}

	if s, ok := ParseLine(line); ok {
		e.merge(s)
	}

	if e.cfg.Conversation {
		e.track(line)
	}
}

// merge keeps the last valid value of each field; a malformed line never
// erases an earlier reading.
func (e *Extractor) merge(s Sample) {
	dst := &e.eval
	if s.Phase == PhasePromptEval {
		dst = &e.promptEval
	}
	if s.MsPerToken.Valid {
		dst.MsPerToken = s.MsPerToken
	}
	if s.TokensPerSecond.Valid {
		dst.TokensPerSecond = s.TokensPerSecond
	}
}

func (e *Extractor) track(line string) {
	prefix := e.cfg.Markers.ResponsePrefix
	switch e.state {
	case Idle:
		if prefix != "" && strings.HasPrefix(line, prefix) {
			e.state = InAssistantResponse
			e.turnStartedAt = e.now()
		}
	case InAssistantResponse:
		if strings.TrimSpace(line) == "" {
			return
		}
		if prefix != "" && strings.HasPrefix(line, prefix) {
			return
		}
		if e.cfg.Markers.isSystem(line) {
			return
		}
		e.endTurn(false)
	}
}

func (e *Extractor) endTurn(atEOF bool) {
	now := e.now()
	e.responses++
	r := response{
		Number:  e.responses,
		Elapsed: now.Sub(e.turnStartedAt),
		Eval:    e.eval,
		AtEOF:   atEOF,
		Cut:     atEOF && e.interrupted,
	}
	if !e.lastResponseAt.IsZero() {
		r.SincePrevious = now.Sub(e.lastResponseAt)
	}
	e.lastResponseAt = now
	e.state = Idle
	e.rep.response(r)
}

// Finish closes the run and prints its summary. A turn still open when
// the stream ended is reported first, marked as cut short on interruption. Later calls are no-ops.
func (e *Extractor) Finish(o Outcome) Summary {
	if e.finished {
		return e.Snapshot()
	}
	e.interrupted = o == Interrupted
	if e.cfg.Conversation && e.state == InAssistantResponse {
		e.endTurn(true)
	}
	e.endedAt = e.now()
	e.finished = true
	s := e.Snapshot()

	switch {
	case e.interrupted:
		e.rep.interrupted(s)
	case e.cfg.Conversation:
		e.rep.conversation(s)
	default:
		e.rep.standard(s)
	}
	return s
}

// Snapshot returns the current run state without printing anything.
func (e *Extractor) Snapshot() Summary {
	end := e.endedAt
	if !e.finished {
		end = e.now()
	}
	s := Summary{
		Threads:           e.cfg.Threads,
		Conversation:      e.cfg.Conversation,
		Elapsed:           end.Sub(e.startedAt),
		Lines:             e.lines,
		GenerationStarted: e.generationStarted,
		PromptEval:        e.promptEval,
		Eval:              e.eval,
		Responses:         e.responses,
		State:             e.state,
		Interrupted:       e.interrupted,
	}
	if e.generationStarted {
		s.TimeToGeneration = e.generationAt.Sub(e.startedAt)
	}
	return s
}
