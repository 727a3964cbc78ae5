package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/linkgate/pkg/cli"
)

// withConfigFile points --config at a temporary file holding content.
func withConfigFile(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	orig := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = orig })
}

func resetValidateFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		validateFlags.print = false
		validateFlags.output = "yaml"
	})
}

func TestValidate_Valid(t *testing.T) {
	withConfigFile(t, "rate_limit:\n  rate_limit: 10\n")
	resetValidateFlags(t)

	var out bytes.Buffer
	validateCmd.SetOut(&out)
	if err := validateConfig(validateCmd, nil); err != nil {
		t.Fatalf("validateConfig failed: %v", err)
	}
	if !strings.Contains(out.String(), "Configuration valid") {
		t.Errorf("Unexpected output: %q", out.String())
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	withConfigFile(t, "cache:\n  capacity: -1\nrate_limit:\n  window_seconds: -2\n")
	resetValidateFlags(t)

	var out, errOut bytes.Buffer
	validateCmd.SetOut(&out)
	validateCmd.SetErr(&errOut)

	err := validateConfig(validateCmd, nil)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if code := cli.ExitCode(err); code != cli.ExitConfigError {
		t.Errorf("ExitCode = %d, want %d", code, cli.ExitConfigError)
	}
	for _, field := range []string{"cache.capacity", "rate_limit.window_seconds"} {
		if !strings.Contains(errOut.String(), "✗ "+field) {
			t.Errorf("stderr missing %s:\n%s", field, errOut.String())
		}
	}
}

func TestValidate_MissingFile(t *testing.T) {
	orig := cfgFile
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	defer func() { cfgFile = orig }()
	resetValidateFlags(t)

	err := validateConfig(validateCmd, nil)
	var cfgErr *cli.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *cli.ConfigError, got %T: %v", err, err)
	}
}

func TestValidate_Print(t *testing.T) {
	withConfigFile(t, `
store:
  backend: redis
  redis:
    addr: cache.internal:6379
    password: hunter2
`)
	resetValidateFlags(t)
	validateFlags.print = true

	t.Run("yaml", func(t *testing.T) {
		validateFlags.output = "yaml"
		var out bytes.Buffer
		validateCmd.SetOut(&out)
		if err := validateConfig(validateCmd, nil); err != nil {
			t.Fatalf("validateConfig failed: %v", err)
		}
		s := out.String()
		if !strings.Contains(s, "addr: cache.internal:6379") {
			t.Errorf("Effective config missing redis addr:\n%s", s)
		}
		if strings.Contains(s, "hunter2") || !strings.Contains(s, redacted) {
			t.Errorf("Password was not redacted:\n%s", s)
		}
	})

	t.Run("json", func(t *testing.T) {
		validateFlags.output = "json"
		var out bytes.Buffer
		validateCmd.SetOut(&out)
		if err := validateConfig(validateCmd, nil); err != nil {
			t.Fatalf("validateConfig failed: %v", err)
		}
		if !json.Valid(out.Bytes()) {
			t.Errorf("Output is not JSON:\n%s", out.String())
		}
		if strings.Contains(out.String(), "hunter2") {
			t.Error("Password was not redacted")
		}
	})
}

func TestRun_DryRun(t *testing.T) {
	withConfigFile(t, "telemetry:\n  logging:\n    level: warn\n")
	t.Cleanup(func() {
		runFlags.dryRun = false
		runFlags.listenAddress = ""
	})
	runFlags.dryRun = true
	runFlags.listenAddress = "127.0.0.1:0"

	var out bytes.Buffer
	runCmd.SetOut(&out)
	if err := runServer(runCmd, nil); err != nil {
		t.Fatalf("runServer failed: %v", err)
	}
	if !strings.Contains(out.String(), "Configuration valid") {
		t.Errorf("Unexpected output: %q", out.String())
	}
}

func TestRun_InvalidOverride(t *testing.T) {
	withConfigFile(t, "{}\n")
	t.Cleanup(func() {
		runFlags.dryRun = false
		runFlags.listenAddress = ""
	})
	runFlags.dryRun = true
	runFlags.listenAddress = "no-port"

	err := runServer(runCmd, nil)
	if cli.ExitCode(err) != cli.ExitConfigError {
		t.Fatalf("Expected config error for bad --listen, got %v", err)
	}
	if fields := cli.ConfigErrors(err); len(fields) != 1 || fields[0].Field != "server.listen_address" {
		t.Errorf("Unexpected field errors: %v", fields)
	}
}
