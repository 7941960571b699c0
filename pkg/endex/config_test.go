package endex_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tobinwells/endex/pkg/endex"
)

func Test_SetMaxCapacity_Rejects_Out_Of_Range_Values(t *testing.T) {
	prev := endex.MaxCapacity()
	t.Cleanup(func() { _ = endex.SetMaxCapacity(prev) })

	require.Error(t, endex.SetMaxCapacity(endex.MinCapacity-1))
	require.Error(t, endex.SetMaxCapacity(endex.MaxCapacityHard+1))
	require.Equal(t, prev, endex.MaxCapacity(), "a rejected value must not change the setting")
}

func Test_SetMaxCapacity_Only_Affects_Future_Opens(t *testing.T) {
	prev := endex.MaxCapacity()
	t.Cleanup(func() { _ = endex.SetMaxCapacity(prev) })

	require.NoError(t, endex.SetMaxCapacity(endex.MinCapacity))

	dir := t.TempDir()
	h, _, err := endex.Open(dir, "")
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, endex.SetMaxCapacity(endex.MaxCapacityHard))

	require.Equal(t, uint32(endex.MinCapacity), h.Stat().Capacity)
}
