package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudchase/bitrun/registry"
)

func newInfoCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <model>",
		Short: "Show model information",
		Long:  "Display the file details of a model in the models directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, g, args[0])
		},
	}
}

func runInfo(cmd *cobra.Command, g *globalOptions, name string) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	m, err := registry.NewModelManager(cfg.ModelsDir).GetModel(name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:          %s\n", m.Name)
	fmt.Fprintf(out, "Path:          %s\n", m.Path)
	fmt.Fprintf(out, "Size:          %s\n", formatSize(m.Size))
	if m.Quantization != "" {
		fmt.Fprintf(out, "Quantization:  %s\n", m.Quantization)
	}
	fmt.Fprintf(out, "Modified:      %s\n", m.ModifiedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Run with:      bitrun -m %s -p \"...\"\n", m.Name)
	return nil
}
