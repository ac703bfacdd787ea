package tlmt

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEvent(t *testing.T) {
	ev := NewEvent("web_start", map[string]any{"database": "sqlite"})

	assert.Equal(t, "web_start", ev.Name)
	assert.Len(t, ev.AnonymousID, 64)
	assert.Equal(t, "sqlite", ev.Properties["database"])
	assert.Equal(t, runtime.GOOS, ev.Properties["os"])

	// Stable across events
	assert.Equal(t, ev.AnonymousID, NewEvent("export", nil).AnonymousID)
}
