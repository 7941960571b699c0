package endex_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tobinwells/endex/pkg/endex"
)

func Test_Error_Is_Matches_By_Code_Not_By_Wrapped_Cause(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := endex.CreateFile(dir+"/missing-parent/x.log", endex.MinCapacity, [16]byte{})
	require.Error(t, err)
	require.ErrorIs(t, err, endex.FileCreate)
	require.NotErrorIs(t, err, endex.FileWrite)

	var typed *endex.Error
	require.True(t, errors.As(err, &typed))
	require.Error(t, typed.Unwrap())
}

func Test_Message_Falls_Back_To_Unknown_For_Undefined_Codes(t *testing.T) {
	t.Parallel()

	require.Equal(t, "unknown error", endex.Message(endex.Code(12345)))
}

func Test_Every_Defined_Code_Has_A_Message(t *testing.T) {
	t.Parallel()

	codes := []endex.Code{
		endex.Success, endex.InvalidParam, endex.InvalidHandle, endex.OutOfMemory,
		endex.FileNotFound, endex.FileCreate, endex.FileOpen, endex.FileWrite,
		endex.FileExtend, endex.Mmap, endex.Munmap, endex.FileSizeExceed,
		endex.InvalidMmap, endex.DirAccess, endex.HandleClosed, endex.FileSwitch,
		endex.MutexLock, endex.CryptoInit, endex.System,
	}

	for _, c := range codes {
		require.NotEqual(t, "unknown error", endex.Message(c), "code %d missing from the message table", c)
	}
}
