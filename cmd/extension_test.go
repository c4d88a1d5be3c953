package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

// writeExtension writes an executable shell script named dash-<name> in a
// temporary directory put first in PATH.
func writeExtension(t *testing.T, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("extensions are shell scripts")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, ExtensionPrefix+name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("cannot write extension: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return dir
}

func setGlobalFlags(t *testing.T, config, env string, verbose bool) {
	t.Helper()
	oldConfig, oldEnv, oldVerbose := *configFile, *envFile, *Verbose
	*configFile, *envFile, *Verbose = config, env, verbose
	t.Cleanup(func() { *configFile, *envFile, *Verbose = oldConfig, oldEnv, oldVerbose })
}

func TestRunExtension(t *testing.T) {
	dir := writeExtension(t, "hello", `
echo "$DASH_CONFIG" > "$1"
echo "$DASH_ENV_FILE" >> "$1"
echo "$DASH_VERBOSE" >> "$1"
`)
	setGlobalFlags(t, "/tmp/random.yaml", "/tmp/random.env", true)

	out := filepath.Join(dir, "out.txt")
	found, code := RunExtension("hello", []string{out})
	if !found {
		t.Fatal("RunExtension() did not find dash-hello")
	}
	if code != 0 {
		t.Fatalf("RunExtension() exit code = %d, want 0", code)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("extension did not write its output: %v", err)
	}
	got := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{"/tmp/random.yaml", "/tmp/random.env", strconv.FormatBool(true)}
	if len(got) != len(want) {
		t.Fatalf("extension env = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("extension env line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRunExtensionExitCode(t *testing.T) {
	writeExtension(t, "fail", "exit 3\n")
	found, code := RunExtension("fail", nil)
	if !found || code != 3 {
		t.Errorf("RunExtension() = (%v, %d), want (true, 3)", found, code)
	}
}

func TestRunExtensionNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if found, _ := RunExtension("does-not-exist", nil); found {
		t.Error("RunExtension() found a missing extension")
	}
}
