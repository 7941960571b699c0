package endex

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

// FilesPerDay is the per-day file budget; slot numbers cycle through
// 0..FilesPerDay-1 and the oldest slot is recycled once the budget is
// exhausted.
const FilesPerDay = 5

var fileNamePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(\d+)\.log$`)

const (
	minYear = 2000
	maxYear = 2100
)

// FileName builds the canonical "YYYY-MM-DD-N.log" name for date and
// slot n, using the local wall-clock date at the moment of creation.
func FileName(date time.Time, n int) string {
	return fmt.Sprintf("%04d-%02d-%02d-%d.log", date.Year(), date.Month(), date.Day(), n)
}

// ParseFileName parses a log file name into its date and slot number.
// It rejects anything that doesn't match the strict
// `^\d{4}-\d{2}-\d{2}-\d+\.log$` shape, or whose year falls outside
// [2000, 2100].
func ParseFileName(name string) (date time.Time, slot int, ok bool) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, 0, false
	}

	year, _ := strconv.Atoi(m[1])
	if year < minYear || year > maxYear {
		return time.Time{}, 0, false
	}

	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	slot, err := strconv.Atoi(m[4])
	if err != nil {
		return time.Time{}, 0, false
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), slot, true
}

// FindLatest probes slots 0..FilesPerDay-1 for date via existence
// checks and returns the largest slot that exists, or -1 if none do.
// This is a fixed bounded scan, never a directory enumeration.
func FindLatest(dir string, date time.Time) int {
	latest := -1

	for n := 0; n < FilesPerDay; n++ {
		path := filepath.Join(dir, FileName(date, n))
		if _, err := os.Stat(path); err == nil {
			latest = n
		}
	}

	return latest
}

// NextSlot computes which slot a rotation (or first open) should target
// for date. If the latest existing slot k is below FilesPerDay-1, the
// next slot is k+1. If the day's budget is exhausted (k == FilesPerDay-1),
// slot 0 is recycled: its existing file is unlinked and the caller is
// told to create slot 0 fresh.
func NextSlot(dir string, date time.Time) (slot int, recycled bool, err error) {
	latest := FindLatest(dir, date)

	if latest < 0 {
		return 0, false, nil
	}

	if latest < FilesPerDay-1 {
		return latest + 1, false, nil
	}

	recyclePath := filepath.Join(dir, FileName(date, 0))
	if rmErr := os.Remove(recyclePath); rmErr != nil && !os.IsNotExist(rmErr) {
		return 0, false, newErr(FileCreate, rmErr)
	}

	return 0, true, nil
}

// Cleanup removes log files whose date is at least days old, measured
// from today using local-noon arithmetic to avoid DST rounding errors
// at midnight boundaries. Per-file errors are swallowed; only a failure
// to read the directory itself is returned.
func Cleanup(dir string, days int) error {
	if days < 0 {
		return newErr(InvalidParam, nil)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return newErr(DirAccess, err)
	}

	today := time.Now()
	todayNoon := time.Date(today.Year(), today.Month(), today.Day(), 12, 0, 0, 0, time.Local)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		date, _, ok := ParseFileName(entry.Name())
		if !ok {
			continue
		}

		fileNoon := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, time.Local)
		daysSince := int(todayNoon.Sub(fileNoon).Hours() / 24)

		if daysSince >= days {
			_ = os.Remove(filepath.Join(dir, entry.Name()))
		}
	}

	return nil
}
