// Package guard switches the process into test mode before any package
// reads its configuration.
package guard

import (
	"os"
	"sync"
)

// TestModeEnv is the environment flag read by app.InTestMode.
const TestModeEnv = "TIMECLOCK_TEST_MODE"

// testSecret is only ever used when JWT_SECRET is unset under test.
const testSecret = "timeclock-test-secret"

var once sync.Once

// Enable sets test mode and fills required configuration with test values.
func Enable() {
	once.Do(func() {
		if os.Getenv(TestModeEnv) == "" {
			_ = os.Setenv(TestModeEnv, "1")
		}
		if os.Getenv("JWT_SECRET") == "" {
			_ = os.Setenv("JWT_SECRET", testSecret)
		}
	})
}

func init() {
	Enable()
}
