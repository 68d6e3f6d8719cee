package testing

import (
	"os"
	stdtesting "testing"

	"github.com/schooner-time/timeclock/internal/testing/guard"
)

func init() {
	guard.Enable()
}

func TestMain(m *stdtesting.M) {
	guard.Enable()
	os.Exit(m.Run())
}
