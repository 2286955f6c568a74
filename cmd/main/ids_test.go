package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"tasktracker/internal/id"
)

func TestIDNextAndDecode(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := newIDCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"next", "-n", "3", "-m", "7"})
	require.NoError(t, cmd.Execute())

	lines := strings.Fields(out.String())
	require.Len(t, lines, 3)

	decoded := &bytes.Buffer{}
	cmd = newIDCmd()
	cmd.SetOut(decoded)
	cmd.SetArgs(append([]string{"decode"}, lines...))
	require.NoError(t, cmd.Execute())

	dec := json.NewDecoder(decoded)
	var prev int64
	for range lines {
		var p id.Parts
		require.NoError(t, dec.Decode(&p))
		require.Equal(t, int64(7), p.MachineID)
		require.Greater(t, p.ID, prev)
		prev = p.ID
	}
}

func TestIDNextRejectsBadMachineID(t *testing.T) {
	cmd := newIDCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"next", "-m", "1024"})
	require.ErrorIs(t, cmd.Execute(), id.ErrMachineIDOutOfRange)
}
