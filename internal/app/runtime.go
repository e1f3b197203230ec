package app

import (
	"os"
	"strconv"
	"sync/atomic"
)

const testModeEnv = "EKONUM_TEST_MODE"

var testMode atomic.Bool

func init() {
	RefreshTestMode()
}

// InTestMode reports whether mains should stop before opening stores, caches
// or listeners.
func InTestMode() bool {
	return testMode.Load()
}

// RefreshTestMode re-reads EKONUM_TEST_MODE after environment changes.
func RefreshTestMode() {
	enabled, _ := strconv.ParseBool(os.Getenv(testModeEnv))
	testMode.Store(enabled)
}
