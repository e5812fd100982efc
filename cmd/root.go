package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cloudchase/bitrun/engine"
)

// Version is set at build time.
var Version = "0.1.0"

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	modelsDir  string
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	o := &runOptions{params: engine.DefaultParams()}

	root := &cobra.Command{
		Use:   "bitrun",
		Short: "Run llama-cli inference and report performance",
		Long: `bitrun launches the llama-cli inference binary with the given parameters,
streams its output and prints tokens/sec, ms/token and wall-clock time
derived from the binary's timing lines.

Examples:
  bitrun -p "Microsoft Corporation is an American multinational corporation"
  bitrun -m models/bitnet_b1_58-3B/ggml-model-i2_s.gguf -t 4 -temp 0.6 -p "Hi"
  bitrun -cnv -p "You are a helpful assistant"
  bitrun list`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInference(cmd, g, o)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Path to a YAML config file (default ./bitrun.yaml if present)")
	pf.StringVar(&g.logLevel, "log-level", "", "Diagnostic log level (debug, info, warn, error, off)")
	pf.StringVar(&g.logFormat, "log-format", "", "Diagnostic log format (console, json)")
	pf.StringVar(&g.modelsDir, "models-dir", "", "Directory scanned for GGUF models")

	f := root.Flags()
	f.StringVarP(&o.params.Model, "model", "m", o.params.Model, "Path to model file or name of a model in the models directory")
	f.IntVarP(&o.params.NPredict, "n-predict", "n", o.params.NPredict, "Number of tokens to predict when generating text")
	f.StringVarP(&o.params.Prompt, "prompt", "p", "", "Prompt to generate text from")
	f.IntVarP(&o.params.Threads, "threads", "t", o.params.Threads, "Number of threads to use")
	f.IntVarP(&o.params.CtxSize, "ctx-size", "c", o.params.CtxSize, "Size of the prompt context")
	f.Float64Var(&o.params.Temperature, "temperature", o.params.Temperature, "Temperature, controls the randomness of the generated text (alias -temp)")
	f.BoolVar(&o.params.Conversation, "conversation", false, "Enable chat mode for instruct models (alias -cnv)")
	f.StringVar(&o.buildDir, "build-dir", "", "Directory llama-cli was built in (default build)")
	f.StringVar(&o.metricsTextfile, "metrics-textfile", "", "Write final metrics to this file in Prometheus text format")
	_ = root.MarkFlagRequired("prompt")

	root.AddCommand(newListCmd(g))
	root.AddCommand(newInfoCmd(g))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the CLI with the process arguments. SIGINT and SIGTERM
// cancel the run; an interrupted run is not an error.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.SetArgs(normalizeArgs(os.Args[1:]))
	return root.ExecuteContext(ctx)
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, engine.ErrInterrupted) {
		return 0
	}
	return 1
}

// singleDashAliases are multi-letter flags that llama.cpp tooling spells
// with one dash. pflag would read -temp as -t emp, so they are rewritten
// to their long forms before parsing.
var singleDashAliases = map[string]string{
	"-temp": "--temperature",
	"-cnv":  "--conversation",
}

// valueFlags take a separate value argument that must not be rewritten.
var valueFlags = map[string]bool{
	"-m": true, "--model": true,
	"-n": true, "--n-predict": true,
	"-p": true, "--prompt": true,
	"-t": true, "--threads": true,
	"-c": true, "--ctx-size": true,
	"-temp": true, "--temperature": true,
	"--config": true, "--log-level": true, "--log-format": true,
	"--models-dir": true, "--build-dir": true, "--metrics-textfile": true,
}

func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			out = append(out, args[i:]...)
			break
		}
		name, val, hasVal := strings.Cut(a, "=")
		if long, ok := singleDashAliases[name]; ok {
			a = long
			if hasVal {
				a += "=" + val
			}
		}
		out = append(out, a)
		if !hasVal && valueFlags[name] && i+1 < len(args) {
			i++
			out = append(out, args[i])
		}
	}
	return out
}
