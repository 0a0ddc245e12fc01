package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnvVar overrides the taskflow home directory.
const HomeEnvVar = "TASKFLOW_HOME"

// homeDirName is the per-project directory used when TASKFLOW_HOME is unset.
const homeDirName = ".taskflow"

// Home returns the taskflow home directory.
// Priority order:
//  1. TASKFLOW_HOME environment variable (if set)
//  2. .taskflow in the current working directory
//
// The directory is not created; writers create what they need.
func Home() (string, error) {
	if home := os.Getenv(HomeEnvVar); home != "" {
		return home, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return filepath.Join(cwd, homeDirName), nil
}

// ConfigPath returns the config file location inside home.
func ConfigPath(home string) string {
	return filepath.Join(home, "config.yaml")
}
