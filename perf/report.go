package perf

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	ruleWidth      = 60
	responseWidth  = 40
	interruptedBye = "👋 Inference interrupted by user"
	cnvTip         = "For detailed timing, run without -cnv flag"
)

// response is one finished conversational turn.
type response struct {
	Number        int
	Elapsed       time.Duration
	SincePrevious time.Duration
	Eval          Sample
	AtEOF         bool
	Cut           bool
}

// reporter renders report blocks. Styling is dropped automatically when
// the writer is not a terminal.
type reporter struct {
	w      io.Writer
	labels Labels
	title  lipgloss.Style
	dim    lipgloss.Style
}

func newReporter(w io.Writer, labels Labels) *reporter {
	if w == nil {
		w = io.Discard
	}
	r := lipgloss.NewRenderer(w)
	return &reporter{
		w:      w,
		labels: labels,
		title:  r.NewStyle().Bold(true),
		dim:    r.NewStyle().Faint(true),
	}
}

func (r *reporter) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *reporter) rule() {
	r.printf("%s\n", strings.Repeat("=", ruleWidth))
}

func (r *reporter) header(title string) {
	r.printf("\n")
	r.rule()
	r.printf("%s\n", r.title.Render(title))
	r.rule()
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.2f seconds", d.Seconds())
}

// speeds prints whichever throughput fields are known.
func (r *reporter) speeds(s Summary) {
	if s.GenerationStarted {
		r.printf("⌛ Time to generation: %s\n", seconds(s.TimeToGeneration))
	}
	r.sample("📥 Prompt processing", s.PromptEval)
	r.sample("📤 Generation", s.Eval)
}

func (r *reporter) sample(label string, s Sample) {
	if s.TokensPerSecond.Valid {
		r.printf("%s speed: %.2f tokens/sec\n", label, s.TokensPerSecond.Value)
	}
	if s.MsPerToken.Valid {
		r.printf("%s latency: %.2f ms/token\n", label, s.MsPerToken.Value)
	}
}

func (r *reporter) footer(threads int, tip string) {
	if r.labels.Optimizations != "" {
		r.printf("🔧 %s\n", r.labels.Optimizations)
	}
	if r.labels.Model != "" {
		r.printf("🧠 Model: %s\n", r.labels.Model)
	}
	r.printf("🏃 Threads used: %d\n", threads)
	if tip != "" {
		r.printf("💡 Tip: %s\n", tip)
	}
	r.rule()
}

func (r *reporter) response(resp response) {
	line := strings.Repeat("─", responseWidth)
	r.printf("\n%s\n", r.dim.Render(line))
	title := fmt.Sprintf("💬 Response #%d", resp.Number)
	switch {
	case resp.Cut:
		title += " (interrupted)"
	case resp.AtEOF:
		title += " (stream ended)"
	}
	r.printf("%s\n", r.title.Render(title))
	r.printf("⏱️  Response time: %s\n", seconds(resp.Elapsed))
	if resp.SincePrevious > 0 {
		r.printf("⏳ Since previous response: %s\n", seconds(resp.SincePrevious))
	}
	r.sample("📤 Generation", resp.Eval)
	r.printf("%s\n", r.dim.Render(line))
}

func (r *reporter) standard(s Summary) {
	r.header("⚡ PERFORMANCE SUMMARY")
	r.printf("⏱️  Total inference time: %s\n", seconds(s.Elapsed))
	r.speeds(s)
	r.footer(s.Threads, "")
}

func (r *reporter) conversation(s Summary) {
	r.header("💬 CONVERSATION SUMMARY")
	r.printf("⏱️  Total session time: %s\n", seconds(s.Elapsed))
	r.printf("💬 Responses: %d\n", s.Responses)
	r.speeds(s)
	r.footer(s.Threads, "")
}

func (r *reporter) interrupted(s Summary) {
	r.header("⚡ PERFORMANCE SUMMARY (Interrupted)")
	r.printf("⏱️  Runtime before interruption: %s\n", seconds(s.Elapsed))
	if s.Conversation {
		r.printf("💬 Responses: %d\n", s.Responses)
	}
	r.speeds(s)
	tip := ""
	if s.Conversation {
		tip = cnvTip
	}
	r.footer(s.Threads, tip)
	r.printf("\n%s\n", interruptedBye)
}
