// Package perf extracts timing metrics from llama-cli console output and
// renders the launcher's performance reports.
//
// The recognised substrings are a parsing contract with llama-cli. A timing
// line looks like
//
//	llama_perf_context_print: prompt eval time = 161.62 ms / 2 tokens ( 80.81 ms per token, 12.37 tokens per second)
//
// and is matched on "=", "ms per token" and "tokens per second". The label
// before "=" selects the phase.
package perf

import (
	"math"
	"strconv"
	"strings"
)

// Phase identifies which part of the run a timing line describes.
type Phase int

const (
	// PhasePromptEval is prompt processing ("prompt eval time").
	PhasePromptEval Phase = iota + 1
	// PhaseEval is token generation ("eval time").
	PhaseEval
)

func (p Phase) String() string {
	switch p {
	case PhasePromptEval:
		return "prompt eval"
	case PhaseEval:
		return "eval"
	default:
		return "unknown"
	}
}

// Rate is an optional measurement. Valid is false when the value was
// missing or did not parse.
type Rate struct {
	Value float64
	Valid bool
}

// Sample is the throughput reported on one timing line.
type Sample struct {
	Phase           Phase
	MsPerToken      Rate
	TokensPerSecond Rate
}

const (
	msPerTokenMarker = "ms per token"
	tpsMarker        = "tokens per second"
)

// ParseLine reports whether line is a prompt-eval or eval timing line and,
// if so, the rates it carries. Fields that fail to parse come back invalid;
// ParseLine never fails outright.
func ParseLine(line string) (Sample, bool) {
	if !strings.Contains(line, msPerTokenMarker) || !strings.Contains(line, tpsMarker) {
		return Sample{}, false
	}
	label, value, ok := strings.Cut(line, "=")
	if !ok {
		return Sample{}, false
	}

	var s Sample
	switch {
	case strings.Contains(label, "prompt eval"):
		s.Phase = PhasePromptEval
	case strings.Contains(label, "eval time"):
		s.Phase = PhaseEval
	default:
		return Sample{}, false
	}

	_, rates, ok := strings.Cut(value, "(")
	if !ok {
		return s, true
	}
	msPart, tpsPart, _ := strings.Cut(rates, ",")
	s.MsPerToken = leadingFloat(msPart)
	s.TokensPerSecond = leadingFloat(tpsPart)
	return s, true
}

// leadingFloat parses the first whitespace-separated field of s.
func leadingFloat(s string) Rate {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Rate{}
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Rate{}
	}
	return Rate{Value: v, Valid: true}
}
