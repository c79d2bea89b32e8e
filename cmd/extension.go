package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/portfoy/portfolio/config"
	"github.com/sirupsen/logrus"
)

// EnvVerbose tells extensions that -v was given.
const EnvVerbose = "PCS_VERBOSE"

// RunExtension attempts to find and execute an external pcs-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
//
// Global flags are passed as environment variables.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "pcs-" + subcommand
	lp, err := exec.LookPath(name)
	if err != nil {
		logrus.WithError(err).Debugf("no extension %q in PATH", name)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(), EnvVerbose+"="+strconv.FormatBool(*verbose))
	if *configPath != "" {
		cmd.Env = append(cmd.Env, config.EnvConfig+"="+*configPath)
	}

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
