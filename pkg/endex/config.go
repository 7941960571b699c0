package endex

import "sync/atomic"

// maxCapacitySetting is the process-wide "maximum file size" knob from
// spec §9: a single global, read-on-open. Each handle snapshots it at
// Open time; later calls to SetMaxCapacity never affect handles already
// open.
var maxCapacitySetting atomic.Uint32

func init() {
	maxCapacitySetting.Store(DefaultCapacity)
}

// SetMaxCapacity changes the capacity used by future calls to [Open].
// n must be within [MinCapacity, MaxCapacityHard]; otherwise
// [InvalidParam] is returned and the setting is left unchanged.
func SetMaxCapacity(n uint32) error {
	if n < MinCapacity || n > MaxCapacityHard {
		return newErr(InvalidParam, nil)
	}

	maxCapacitySetting.Store(n)

	return nil
}

// MaxCapacity returns the capacity that the next call to [Open] will use.
func MaxCapacity() uint32 {
	return maxCapacitySetting.Load()
}
