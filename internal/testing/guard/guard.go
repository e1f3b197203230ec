// Package guard switches binaries into test mode when imported by their
// tests, so calling main() never opens stores, caches or listeners.
package guard

import (
	"os"
	"sync"

	"github.com/odyssey-erp/ekonum/internal/app"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("EKONUM_TEST_MODE") == "" {
			_ = os.Setenv("EKONUM_TEST_MODE", "1")
		}
		app.RefreshTestMode()
	})
}
