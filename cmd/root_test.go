package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafo/pkg/tasks"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	root := RootCommand(&logs)
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), logs.String(), err
}

func TestValidateWithoutInputFails(t *testing.T) {
	dir := t.TempDir()
	_, logs, err := run(t, "--dir", dir, "--log-format", "json", "validate")

	assert.ErrorIs(t, err, tasks.ErrNoInput)
	assert.Contains(t, logs, `"command":"validate"`)
	assert.Contains(t, logs, `"run_id"`)
	assert.DirExists(t, filepath.Join(dir, "visualizacoes_pt"))
}

func TestConfigFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dados Fis HI.csv"),
		[]byte("No.,HI\n1,10\n2,12\n3,11\n4,15\n"), 0o644))
	cfgFile := filepath.Join(dir, "trafo.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("visualize:\n  dpi: 30\n  output_dir: figs\n"), 0o644))

	out, _, err := run(t, "--dir", dir, "--config", cfgFile, "--log-level", "error", "visualize")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Arquivo 'Dados Fis HI.csv' carregado com sucesso.")
	assert.FileExists(t, filepath.Join(dir, "figs", "hi_hist_indice_de_integridade.png"))
	assert.FileExists(t, filepath.Join(dir, "figs", "hi_box_indice_de_integridade.png"))
}

func TestBadConfigIsRejected(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "trafo.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("classify:\n  test_size: 2\n"), 0o644))

	_, _, err := run(t, "--dir", dir, "--config", cfgFile, "classify")
	assert.ErrorContains(t, err, "test_size")
}

func TestLogFile(t *testing.T) {
	dir := t.TempDir()
	_, logs, err := run(t, "--dir", dir, "--log-file", "logs/trafo.log", "validate")
	require.ErrorIs(t, err, tasks.ErrNoInput)
	assert.Empty(t, logs)

	b, err := os.ReadFile(filepath.Join(dir, "logs", "trafo.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "command=validate")
}
