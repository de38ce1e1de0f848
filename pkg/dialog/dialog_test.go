package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectAlwaysReturnsBackend(t *testing.T) {
	// Whatever the host has installed, Detect must hand back something
	// usable; the terminal fallback guarantees that.
	assert.NotNil(t, Detect())
}

func TestDetectFallsBackToConsole(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	d := Detect()
	_, ok := d.(*consoleDialogs)
	assert.True(t, ok)
}
