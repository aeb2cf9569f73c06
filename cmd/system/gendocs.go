package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func NewGenDocsCommand() *cobra.Command {
	var (
		outDir string
		format string
	)

	cmd := &cobra.Command{
		Use:   "gendocs",
		Short: "Generate CLI reference documentation",
		Long: `Generate reference documentation for every caseservice command.

Supported formats are markdown (default), man and yaml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(outDir)
			if err != nil {
				return fmt.Errorf("failed to resolve %q: %w", outDir, err)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create %q: %w", dir, err)
			}
			if err := genDocs(cmd.Root(), format, dir); err != nil {
				return err
			}
			cmd.Printf("CLI docs (%s) generated in %s\n", format, dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "outdir", "docs/cli", "Output directory")
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown, man or yaml")
	return cmd
}

func genDocs(root *cobra.Command, format, dir string) error {
	root.DisableAutoGenTag = true

	var err error
	switch format {
	case "markdown", "md":
		err = doc.GenMarkdownTree(root, dir)
	case "man":
		err = doc.GenManTree(root, &doc.GenManHeader{Title: "CASESERVICE", Section: "1"}, dir)
	case "yaml":
		err = doc.GenYamlTree(root, dir)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to generate %s docs: %w", format, err)
	}
	return nil
}
