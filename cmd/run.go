package cmd

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cloudchase/bitrun/config"
	"github.com/cloudchase/bitrun/engine"
	"github.com/cloudchase/bitrun/logger"
	"github.com/cloudchase/bitrun/perf"
	"github.com/cloudchase/bitrun/registry"
)

const startBanner = "🚀 Starting BitNet inference with ARM optimizations..."

// runOptions holds the root command's own flags.
type runOptions struct {
	params          engine.Params
	buildDir        string
	metricsTextfile string
}

// loadConfig reads the configuration and applies the global flags on top.
func loadConfig(g *globalOptions) (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	if g.modelsDir != "" {
		cfg.ModelsDir = g.modelsDir
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

// resolveParams starts from the configured defaults and applies every
// flag the user set explicitly.
func resolveParams(flags *pflag.FlagSet, cfg config.Config, o *runOptions) engine.Params {
	p := cfg.Params()
	p.Prompt = o.params.Prompt
	p.Conversation = o.params.Conversation
	if flags.Changed("model") {
		p.Model = o.params.Model
	}
	if flags.Changed("n-predict") {
		p.NPredict = o.params.NPredict
	}
	if flags.Changed("threads") {
		p.Threads = o.params.Threads
	}
	if flags.Changed("ctx-size") {
		p.CtxSize = o.params.CtxSize
	}
	if flags.Changed("temperature") {
		p.Temperature = o.params.Temperature
	}
	return p
}

func runInference(cmd *cobra.Command, g *globalOptions, o *runOptions) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	if o.buildDir != "" {
		cfg.BuildDir = o.buildDir
	}
	if o.metricsTextfile != "" {
		cfg.Metrics.Textfile = o.metricsTextfile
	}

	p := resolveParams(cmd.Flags(), cfg, o)
	if err := p.Validate(); err != nil {
		return err
	}
	if path, ok := registry.NewModelManager(cfg.ModelsDir).ResolveModelPath(p.Model); ok {
		logger.Log.Info("resolved model name", "name", p.Model, "path", path)
		p.Model = path
	}

	binary := cfg.BinaryPath(runtime.GOOS)
	logger.Log.Debug("inference binary", "path", binary, "threads", p.Threads, "conversation", p.Conversation)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, startBanner)

	ex := perf.NewExtractor(out, cfg.PerfConfig(p))
	l := engine.New(binary,
		engine.WithOutput(out),
		engine.WithInput(cmd.InOrStdin()),
		engine.WithLineHandler(ex.Observe),
	)

	_, err = l.Run(cmd.Context(), p)
	switch {
	case errors.Is(err, engine.ErrInterrupted):
		writeMetrics(cfg.Metrics.Textfile, ex.Finish(perf.Interrupted))
		return nil
	case err != nil:
		return err
	}

	writeMetrics(cfg.Metrics.Textfile, ex.Finish(perf.Completed))
	return nil
}

func writeMetrics(path string, s perf.Summary) {
	if path == "" {
		return
	}
	if err := perf.WriteTextfile(path, s); err != nil {
		logger.Log.Warn("failed to write metrics textfile", "path", path, "error", err.Error())
		return
	}
	logger.Log.Debug("wrote metrics textfile", "path", path)
}
