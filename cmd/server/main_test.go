package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	require.True(t, strings.HasPrefix(out.String(), "ws-chat dev"))
}

func TestServeRejectsInvalidOverrides(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"--config", filepath.Join(t.TempDir(), "config.yaml"),
		"--subscriber-buffer=-1",
	})

	err := cmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid config")
}

func TestClientRequiresName(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"client"})

	err := cmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "name")
}
