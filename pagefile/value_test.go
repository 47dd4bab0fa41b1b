package pagefile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueOpenCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.dat")
	v, err := Open[int32](path)
	require.NoError(t, err)
	require.True(t, v.IsOpen())
	require.NoError(t, v.Close())
}

func TestValueRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.dat")
	v, err := Open[int32](path)
	require.NoError(t, err)
	defer v.Close()

	const reps = 10_000
	offsets := make([]uint64, reps)
	for i := 0; i < reps; i++ {
		off, err := v.Append(int32(i))
		require.NoError(t, err)
		offsets[i] = off
	}

	for i := 0; i < reps; i++ {
		got, err := v.Get(offsets[i])
		require.NoError(t, err)
		require.EqualValues(t, i, got)
	}
}

func TestValueAppendIsTightlyPacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.dat")
	v, err := Open[int64](path)
	require.NoError(t, err)
	defer v.Close()

	first, err := v.Append(int64(1))
	require.NoError(t, err)
	second, err := v.Append(int64(2))
	require.NoError(t, err)

	require.EqualValues(t, 0, first)
	require.EqualValues(t, 8, second)
}

func TestValueSurvivesClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.dat")
	v, err := Open[uint64](path)
	require.NoError(t, err)

	off, err := v.Append(uint64(42))
	require.NoError(t, err)
	require.NoError(t, v.Close())

	reopened, err := Open[uint64](path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(off)
	require.NoError(t, err)
	require.EqualValues(t, 42, got)

	// A second append on the reopened file must land right after the
	// first, not after whatever padding growingFile over-allocated.
	next, err := reopened.Append(uint64(43))
	require.NoError(t, err)
	require.EqualValues(t, 8, next)
}

func TestValueGetPastEndOfFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.dat")
	v, err := Open[uint64](path)
	require.NoError(t, err)
	defer v.Close()

	_, err = v.Get(1000)
	require.Error(t, err)
}
