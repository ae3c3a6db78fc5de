package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zipsh/internal/fs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "test.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, data := range map[string]string{
		"file1.txt":        "Hello, World!",
		"subdir/file3.txt": "Another file in a subdirectory.",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestShellCommand(t *testing.T) {
	dir := t.TempDir()
	archivePath := writeZip(t, dir)

	out, err := execute(t, "whoami\nls\ncd subdir\nls\nexit\n", "alice", archivePath)
	require.NoError(t, err)

	expected := "alice@emulator:/$ alice\n" +
		"alice@emulator:/$ file1.txt\nsubdir\n" +
		"alice@emulator:/$ " +
		"alice@emulator:/subdir$ file3.txt\n" +
		"alice@emulator:/subdir$ Exiting the emulator. Goodbye!\n"
	assert.Equal(t, expected, out)
}

func TestShellCommandConfig(t *testing.T) {
	dir := t.TempDir()
	archivePath := writeZip(t, dir)
	configPath := filepath.Join(dir, "zipsh.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("hostname: box\nfarewell: bye\ncolor: always\n"), 0o600))

	out, err := execute(t, "exit\n", "--config", configPath, "bob", archivePath)
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "box")
	assert.True(t, strings.HasSuffix(out, "bye\n"), "got %q", out)
}

func TestShellCommandErrors(t *testing.T) {
	dir := t.TempDir()
	archivePath := writeZip(t, dir)

	_, err := execute(t, "", "alice")
	require.Error(t, err, "missing archive argument")

	_, err = execute(t, "", "alice", filepath.Join(dir, "missing.zip"))
	var loadErr *fs.LoadError
	require.ErrorAs(t, err, &loadErr)

	notArchive := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(notArchive, []byte("not an archive"), 0o600))
	_, err = execute(t, "", "alice", notArchive)
	require.ErrorAs(t, err, &loadErr)

	badConfig := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badConfig, []byte("color: sometimes\n"), 0o600))
	_, err = execute(t, "", "--config", badConfig, "alice", archivePath)
	require.Error(t, err)
}

func TestShellCommandAnyUsername(t *testing.T) {
	dir := t.TempDir()
	archivePath := writeZip(t, dir)

	tests := []struct {
		name string
		args []string
		user string
	}{
		{"help", []string{"help", archivePath}, "help"},
		{"mount", []string{"mount", archivePath}, "mount"},
		{"version", []string{"version", archivePath}, "version"},
		{"completion", []string{"completion", archivePath}, "completion"},
		{"dash prefixed", []string{"--", "-bob", archivePath}, "-bob"},
		{"flag lookalike", []string{"--", "--mount", archivePath}, "--mount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "whoami\nexit\n", tt.args...)
			require.NoError(t, err)

			prompt := tt.user + "@emulator:/$ "
			expected := prompt + tt.user + "\n" + prompt + "Exiting the emulator. Goodbye!\n"
			assert.Equal(t, expected, out)
		})
	}
}

func TestMountFlagErrors(t *testing.T) {
	dir := t.TempDir()
	archivePath := writeZip(t, dir)

	_, err := execute(t, "", "--mount", dir)
	require.Error(t, err, "missing archive argument")

	_, err = execute(t, "", "--mount", dir, "alice", archivePath)
	require.Error(t, err, "mount takes only the archive")

	_, err = execute(t, "", "--mount", dir, filepath.Join(dir, "missing.zip"))
	var loadErr *fs.LoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "go:")

	_, err = execute(t, "", "--version", "extra")
	require.Error(t, err)
}
