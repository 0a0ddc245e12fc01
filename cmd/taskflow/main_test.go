package main

import (
	"testing"

	"github.com/harrison/taskflow/internal/cmd"
)

func TestRootCommandVersion(t *testing.T) {
	if cmd.NewRootCommand().Version == "" {
		t.Error("root command version should not be empty")
	}
}
