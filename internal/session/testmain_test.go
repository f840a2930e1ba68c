package session

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	// Force a throwaway profile so storage tests never touch a real profile's
	// state.db.
	os.Setenv("DECKOPS_PROFILE", "_test")

	os.Exit(m.Run())
}
