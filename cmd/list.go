package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cloudchase/bitrun/registry"
)

func newListCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List local models",
		Long:    "List the GGUF models found in the models directory.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, g)
		},
	}
}

func runList(cmd *cobra.Command, g *globalOptions) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	mgr := registry.NewModelManager(cfg.ModelsDir)
	models, err := mgr.ListModels()
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(models) == 0 {
		fmt.Fprintf(out, "No models found in %s.\n", mgr.Dir())
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tQUANTIZATION\tMODIFIED")
	for _, m := range models {
		quant := m.Quantization
		if quant == "" {
			quant = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Name, formatSize(m.Size), quant, m.ModifiedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
