package perf

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bitrun"

// Registry returns a fresh registry holding the run's final numbers as
// gauges. Rates that were never observed are not registered.
func Registry(s Summary) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	gauge := func(name, help string, v float64) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
		g.Set(v)
		reg.MustRegister(g)
	}
	rate := func(name, help string, r Rate) {
		if r.Valid {
			gauge(name, help, r.Value)
		}
	}

	gauge("wall_seconds", "Wall-clock duration of the inference run.", s.Elapsed.Seconds())
	gauge("threads", "Threads passed to the inference binary.", float64(s.Threads))
	gauge("responses", "Conversational responses observed.", float64(s.Responses))
	gauge("interrupted", "1 if the run was interrupted by the user.", boolFloat(s.Interrupted))
	if s.GenerationStarted {
		gauge("time_to_generation_seconds", "Time from launch until generation started.", s.TimeToGeneration.Seconds())
	}
	rate("prompt_eval_tokens_per_second", "Prompt processing throughput.", s.PromptEval.TokensPerSecond)
	rate("prompt_eval_ms_per_token", "Prompt processing latency per token.", s.PromptEval.MsPerToken)
	rate("eval_tokens_per_second", "Generation throughput.", s.Eval.TokensPerSecond)
	rate("eval_ms_per_token", "Generation latency per token.", s.Eval.MsPerToken)

	return reg
}

// WriteTextfile writes the run's metrics to path in the Prometheus text
// format, for the node exporter textfile collector.
func WriteTextfile(path string, s Summary) error {
	return prometheus.WriteToTextfile(path, Registry(s))
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
