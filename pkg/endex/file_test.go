package endex_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tobinwells/endex/pkg/endex"
)

func Test_CreateFile_Extends_To_Capacity_And_Writes_A_Valid_Footer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "2026-07-31-0.log")

	f, err := endex.CreateFile(path, endex.MinCapacity, [16]byte{})
	require.NoError(t, err)
	defer f.Close()

	info, err := f.Stat()
	require.NoError(t, err)
	require.Equal(t, int64(endex.MinCapacity), info.Size())

	_, footer, err := endex.OpenExistingFile(path)
	require.NoError(t, err)
	require.Equal(t, uint32(endex.MinCapacity), footer.Capacity)
	require.Equal(t, uint32(0), footer.Used)
}

func Test_CreateFile_Fails_On_Exclusive_Create_Conflict(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "2026-07-31-0.log")

	f1, err := endex.CreateFile(path, endex.MinCapacity, [16]byte{})
	require.NoError(t, err)
	defer f1.Close()

	_, err = endex.CreateFile(path, endex.MinCapacity, [16]byte{})
	require.Error(t, err)
}

func Test_OpenExistingFile_Rejects_Truncated_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "2026-07-31-0.log")

	require.NoError(t, os.WriteFile(path, make([]byte, endex.FooterSize-1), 0o600))

	_, _, err := endex.OpenExistingFile(path)
	require.Error(t, err)
	require.ErrorIs(t, err, endex.InvalidMmap)
}

func Test_OpenExistingFile_Rejects_Bad_Magic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "2026-07-31-0.log")

	footer := endex.EncodeFooter(endex.Footer{Capacity: endex.MinCapacity, Used: 0})
	buf := make([]byte, endex.MinCapacity)
	copy(buf[len(buf)-endex.FooterSize:], footer[:])
	buf[len(buf)-endex.FooterSize+16] ^= 0xFF // corrupt the magic

	require.NoError(t, os.WriteFile(path, buf, 0o600))

	_, _, err := endex.OpenExistingFile(path)
	require.Error(t, err)
	require.ErrorIs(t, err, endex.InvalidMmap)
}
