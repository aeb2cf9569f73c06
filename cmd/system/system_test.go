package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoot() *cobra.Command {
	root := &cobra.Command{Use: "caseservice"}
	root.PersistentFlags().String("config", "config.yaml", "config file path")
	root.AddCommand(NewSystemCommand())
	return root
}

func TestGenDocsFormats(t *testing.T) {
	for format, file := range map[string]string{
		"markdown": "caseservice_system_migrate.md",
		"yaml":     "caseservice_system_migrate.yaml",
		"man":      "caseservice-system-migrate.1",
	} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, genDocs(newRoot(), format, dir))
			_, err := os.Stat(filepath.Join(dir, file))
			assert.NoError(t, err)
		})
	}
}

func TestGenDocsRejectsUnknownFormat(t *testing.T) {
	assert.ErrorContains(t, genDocs(newRoot(), "pdf", t.TempDir()), `unknown format "pdf"`)
}

func TestSystemCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range NewSystemCommand().Commands() {
		names[c.Name()] = true
	}
	assert.Equal(t, map[string]bool{"init": true, "migrate": true, "gendocs": true}, names)
}
