// Package testutil provides shared test utilities for CLI testing across packages.
// This enables co-located CLI tests while maintaining consistent test infrastructure.
package testutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todobreeze/cmd/todobreeze/cmd"
)

// defaultTestConfig is the minimal config used by the test constructor to
// ensure isolation.
const defaultTestConfig = "# test config\ndefault_sort: manual\n"

// CLITest runs CLI commands against isolated per-test storage.
type CLITest struct {
	t          *testing.T
	cfg        *cmd.Config
	tmpDir     string
	configPath string
}

// NewCLITest creates a CLI test helper with its own task file, fallback
// database, and config file under a temp directory.
func NewCLITest(t *testing.T) *CLITest {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte(defaultTestConfig), 0644); err != nil {
		t.Fatalf("failed to create config file: %v", err)
	}

	cfg := &cmd.Config{
		ConfigPath: configPath,
		FilePath:   filepath.Join(tmpDir, "tasks.json"),
		KVPath:     filepath.Join(tmpDir, "fallback.db"),
	}

	return &CLITest{
		t:          t,
		cfg:        cfg,
		tmpDir:     tmpDir,
		configPath: configPath,
	}
}

// Config returns the CLI config used by this helper.
func (c *CLITest) Config() *cmd.Config {
	return c.cfg
}

// TmpDir returns the isolated temp directory.
func (c *CLITest) TmpDir() string {
	return c.tmpDir
}

// TaskFilePath returns the path of the primary task file.
func (c *CLITest) TaskFilePath() string {
	return c.cfg.FilePath
}

// SetFullConfig replaces the config file contents.
func (c *CLITest) SetFullConfig(yamlContent string) {
	c.t.Helper()
	if err := os.WriteFile(c.configPath, []byte(yamlContent), 0644); err != nil {
		c.t.Fatalf("failed to write config file: %v", err)
	}
}

// Execute runs a CLI command and returns its output and exit code.
func (c *CLITest) Execute(args ...string) (stdout, stderr string, exitCode int) {
	var out, errOut bytes.Buffer
	exitCode = cmd.Execute(args, &out, &errOut, c.cfg)
	return out.String(), errOut.String(), exitCode
}

// MustExecute runs a CLI command and fails the test on a non-zero exit.
func (c *CLITest) MustExecute(args ...string) string {
	c.t.Helper()
	stdout, stderr, exitCode := c.Execute(args...)
	if exitCode != 0 {
		c.t.Fatalf("command %v failed (exit %d)\nstdout: %s\nstderr: %s", args, exitCode, stdout, stderr)
	}
	return stdout
}

// ExecuteAndFail runs a CLI command and fails the test if it succeeds.
func (c *CLITest) ExecuteAndFail(args ...string) (stdout, stderr string) {
	c.t.Helper()
	stdout, stderr, exitCode := c.Execute(args...)
	if exitCode == 0 {
		c.t.Fatalf("command %v should have failed\nstdout: %s", args, stdout)
	}
	return stdout, stderr
}

// WriteTaskFile seeds the primary task file with raw JSON.
func (c *CLITest) WriteTaskFile(content string) {
	c.t.Helper()
	if err := os.WriteFile(c.cfg.FilePath, []byte(content), 0644); err != nil {
		c.t.Fatalf("failed to seed task file: %v", err)
	}
}

// ReadTaskFile decodes the primary task file into generic entries.
func (c *CLITest) ReadTaskFile() []map[string]any {
	c.t.Helper()
	data, err := os.ReadFile(c.cfg.FilePath)
	if err != nil {
		c.t.Fatalf("failed to read task file: %v", err)
	}
	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		c.t.Fatalf("task file is not a JSON array: %v", err)
	}
	return entries
}

// AssertContains checks that output contains the expected string.
func AssertContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("output should contain %q\ngot: %s", expected, output)
	}
}

// AssertNotContains checks that output does not contain the string.
func AssertNotContains(t *testing.T, output, unexpected string) {
	t.Helper()
	if strings.Contains(output, unexpected) {
		t.Errorf("output should not contain %q\ngot: %s", unexpected, output)
	}
}

// AssertExitCode checks a command's exit code.
func AssertExitCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("exit code = %d, want %d", got, want)
	}
}
