package id

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	v := int64(42)<<22 | int64(1023)<<12 | 4095
	p := Decode(v)
	require.Equal(t, int64(42), p.Timestamp)
	require.Equal(t, int64(1023), p.MachineID)
	require.Equal(t, int64(4095), p.Sequence)
	require.Equal(t, int64(Epoch+42), p.Time.UnixMilli())
}

func TestParseFormat(t *testing.T) {
	g, err := New(9)
	require.NoError(t, err)
	v, err := g.NextID()
	require.NoError(t, err)

	parsed, err := Parse(Format(v))
	require.NoError(t, err)
	require.Equal(t, v, parsed)

	_, err = Parse("not-an-id")
	require.Error(t, err)
}

func TestBootstrap(t *testing.T) {
	g, err := Bootstrap(nil)
	require.NoError(t, err)
	require.Equal(t, int64(DefaultMachineID), g.MachineID())

	machineID := int64(12)
	g, err = Bootstrap(&machineID)
	require.NoError(t, err)
	require.Equal(t, machineID, g.MachineID())

	bad := int64(2048)
	_, err = Bootstrap(&bad)
	require.ErrorIs(t, err, ErrMachineIDOutOfRange)
}

func TestFallback(t *testing.T) {
	require.Same(t, Fallback(), Fallback())
	require.Equal(t, int64(DefaultMachineID), Fallback().MachineID())
	require.Same(t, Fallback(), OrFallback(nil))

	g, err := New(4)
	require.NoError(t, err)
	require.Same(t, g, OrFallback(g))
}
