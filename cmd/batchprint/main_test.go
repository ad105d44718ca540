package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajkula/GoBatchPrint/config"
	"github.com/ajkula/GoBatchPrint/domain/model"
)

// writeTestConfig saves a dry-run configuration logging to a file in dir
func writeTestConfig(t *testing.T, dir string, mutate func(*config.Config)) string {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Printer.Backend = "dry-run"
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = filepath.Join(dir, "batchprint.log")
	if mutate != nil {
		mutate(cfg)
	}

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, path))
	return path
}

func makePDFFolder(t *testing.T, names ...string) string {
	t.Helper()

	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0644))
	}
	return dir
}

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer

	opts, err := parseFlags([]string{"-dir", "/tmp/in", "-dry-run", "-list"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/in", opts.dir)
	assert.True(t, opts.dryRun)
	assert.True(t, opts.listOnly)
	assert.False(t, opts.serve)
	assert.Equal(t, "config.yaml", opts.configPath)

	opts, err = parseFlags([]string{"-watch", "/tmp/hot"}, &stderr)
	require.NoError(t, err)
	assert.True(t, opts.serve, "-watch implies server mode")

	_, err = parseFlags([]string{"-unknown"}, &stderr)
	assert.Error(t, err)
}

func TestLoadConfigOverrides(t *testing.T) {
	tmp := t.TempDir()
	path := writeTestConfig(t, tmp, func(c *config.Config) {
		c.Printer.Backend = "system"
	})

	cfg, err := loadConfig(&options{configPath: path, dryRun: true})
	require.NoError(t, err)
	assert.Equal(t, "dry-run", cfg.Printer.Backend)
	assert.False(t, cfg.HTTP.Enabled, "one-shot mode never starts the HTTP server")

	cfg, err = loadConfig(&options{configPath: path, serve: true, watchDir: tmp})
	require.NoError(t, err)
	assert.True(t, cfg.HTTP.Enabled)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, tmp, cfg.Watch.Directory)

	_, err = loadConfig(&options{configPath: filepath.Join(tmp, "missing.yaml")})
	assert.Error(t, err, "an explicit config path must exist")
}

func TestRunVersionAndGenerateConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitOK, run([]string{"-version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), version)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	stdout.Reset()
	assert.Equal(t, exitOK, run([]string{"-generate-config", "-config", path}, &stdout, &stderr))
	assert.FileExists(t, path)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "system", cfg.Printer.Backend)
}

func TestRunNothingToDo(t *testing.T) {
	path := writeTestConfig(t, t.TempDir(), nil)

	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitSessionError, run([]string{"-config", path}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Nothing to do")
}

func TestRunPrintsFolder(t *testing.T) {
	dir := makePDFFolder(t, "b.pdf", "a.PDF", "notes.txt")
	path := writeTestConfig(t, t.TempDir(), nil)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", path, "-dir", dir}, &stdout, &stderr)

	assert.Equal(t, exitOK, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "2 PDF file(s)")
	assert.Contains(t, out, "a.PDF")
	assert.NotContains(t, out, "notes.txt")
	assert.Contains(t, out, "Print jobs have been sent to dry-run")
	assert.Empty(t, stderr.String())
}

func TestRunReportsFileFailures(t *testing.T) {
	dir := makePDFFolder(t, "a.pdf", "b.pdf", "c.pdf")
	path := writeTestConfig(t, t.TempDir(), func(c *config.Config) {
		c.Printer.DryRunFailures = []string{"b.pdf"}
	})

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", path, "-dir", dir}, &stdout, &stderr)

	assert.Equal(t, exitFileFailures, code)
	assert.Contains(t, stderr.String(), "Failed to print "+filepath.Join(dir, "b.pdf"))
	assert.Contains(t, stdout.String(), "2 succeeded, 1 failed")
}

func TestRunEmptyFolder(t *testing.T) {
	dir := makePDFFolder(t, "readme.txt")
	path := writeTestConfig(t, t.TempDir(), nil)

	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitOK, run([]string{"-config", path, "-dir", dir}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "0 PDF file(s)")
	assert.Contains(t, stdout.String(), "Nothing to print.")
}

func TestRunMissingFolder(t *testing.T) {
	path := writeTestConfig(t, t.TempDir(), nil)
	missing := filepath.Join(t.TempDir(), "gone")

	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitSessionError, run([]string{"-config", path, "-dir", missing}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "cannot read folder "+missing)
}

func TestRunListOnly(t *testing.T) {
	dir := makePDFFolder(t, "one.pdf")
	path := writeTestConfig(t, t.TempDir(), nil)

	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitOK, run([]string{"-config", path, "-dir", dir, "-list"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "1 PDF file(s)")
	assert.NotContains(t, stdout.String(), "Print jobs")
}

func TestRunIssueToken(t *testing.T) {
	path := writeTestConfig(t, t.TempDir(), nil)

	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitOK, run([]string{"-config", path, "-issue-token", "ops"}, &stdout, &stderr))
	assert.Len(t, strings.Split(strings.TrimSpace(stdout.String()), "."), 3)
}

func TestDescribeError(t *testing.T) {
	fsErr := &model.FilesystemError{Path: "/nope", Err: os.ErrNotExist}

	assert.Contains(t, describeError(fsErr), "cannot read folder /nope")
	assert.Equal(t, "no default printer is configured on this system", describeError(model.ErrNoPrinter))
	assert.Equal(t, "a print session is already running", describeError(model.ErrSessionInProgress))
	assert.Equal(t, "no folder given", describeError(&model.FilesystemError{Err: model.ErrDirectoryRequired}))
}
