package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "qrtool", root.Use)
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"encode", "decode", "config"})

	out, _, err := run(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Available Commands:")
}

func TestEncodeThenDecode(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.png")
	second := filepath.Join(dir, "second.png")

	_, _, err := run(t, "", "encode", "-o", first, "-e", "Q", "HELLO WORLD")
	require.NoError(t, err)
	_, _, err = run(t, "https://example.com/path\n", "encode", "-o", second, "--size", "300")
	require.NoError(t, err)

	out, _, err := run(t, "", "decode", first)
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD\n", out)

	out, logs, err := run(t, "", "--log-format", "json", "decode", "--workers", "2", first, second)
	require.NoError(t, err)
	assert.Equal(t, first+": HELLO WORLD\n"+second+": https://example.com/path\n", out)
	assert.Contains(t, logs, `"msg":"decoded"`)
	assert.Contains(t, logs, `"ec_level":"Q"`)
}

func TestDecodeFailures(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, "", "decode", filepath.Join(dir, "missing.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1")

	_, _, err = run(t, "", "decode", "--binarizer", "otsu", "x.png")
	assert.Error(t, err)
}

func TestEncodeTerminal(t *testing.T) {
	out, _, err := run(t, "", "encode", "--output", "terminal", "--margin", "0", "TERM")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	// 21 rows of modules make 11 lines
	assert.Len(t, lines, 11)
	assert.True(t, strings.HasPrefix(lines[0], "█▀▀▀▀▀█"), lines[0])
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("QRTOOL_ENCODE_SIZE", "512")
	out, _, err := run(t, "", "config", "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, out, "log_level: debug")
	assert.Contains(t, out, "size: 512")
	assert.Contains(t, out, "error_correction: M")
}
