package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Environment variables passing the global flags to extensions.
const (
	EnvConfigFile = "DASH_CONFIG"
	EnvEnvFile    = "DASH_ENV_FILE"
	EnvVerbose    = "DASH_VERBOSE"
)

// ExtensionPrefix is the executable name prefix of dash extensions.
const ExtensionPrefix = "dash-"

// extensionEnv returns the environment of an extension: the current one plus
// the global flags.
func extensionEnv() []string {
	return append(os.Environ(),
		EnvConfigFile+"="+*configFile,
		EnvEnvFile+"="+*envFile,
		EnvVerbose+"="+strconv.FormatBool(*Verbose),
	)
}

// RunExtension attempts to find and execute an external dash-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := ExtensionPrefix + subcommand
	lp, err := exec.LookPath(name)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = extensionEnv()

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true, exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
