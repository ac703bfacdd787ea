// Package tlmt sends anonymous usage events.
package tlmt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v4/host"
)

type Telemetry interface {
	Send(ctx context.Context, event Event) error
	Close() error
}

// Event is one usage event. AnonymousID never carries the raw host id.
type Event struct {
	AnonymousID string
	Name        string
	Properties  map[string]any
}

// NewEvent creates an event for this machine
func NewEvent(name string, props map[string]any) Event {
	if props == nil {
		props = map[string]any{}
	}

	props["os"] = runtime.GOOS
	props["arch"] = runtime.GOARCH

	return Event{
		AnonymousID: anonymousID(),
		Name:        name,
		Properties:  props,
	}
}

var (
	idOnce sync.Once
	id     string
)

func anonymousID() string {
	idOnce.Do(func() {
		raw, err := host.HostID()
		if err != nil || raw == "" {
			raw, _ = os.Hostname()
		}

		sum := sha256.Sum256([]byte("hashcat-dashboard:" + raw))
		id = hex.EncodeToString(sum[:])
	})

	return id
}
