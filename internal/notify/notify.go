// Package notify delivers desktop notifications via notify-send.
package notify

import (
	"os/exec"

	"sigtui/internal/logging"
)

// Desktop sends notifications through notify-send. When the binary is
// missing, or notifications are disabled, every Send is a no-op.
type Desktop struct {
	binary  string
	enabled bool
}

// NewDesktop probes for notify-send and returns a notifier. enabled=false
// forces the no-op path regardless of what is installed.
func NewDesktop(enabled bool) *Desktop {
	d := &Desktop{enabled: enabled}
	if !enabled {
		return d
	}
	path, err := exec.LookPath("notify-send")
	if err != nil {
		logging.Get(logging.CategoryNotify).Warn("notify-send not found, notifications disabled")
		d.enabled = false
		return d
	}
	d.binary = path
	return d
}

// Enabled reports whether notifications will actually be delivered.
func (d *Desktop) Enabled() bool {
	return d.enabled
}

// Send fires one notification without blocking the caller. Delivery failures
// only hit the log.
func (d *Desktop) Send(title, body string) {
	if !d.enabled {
		return
	}
	go func() {
		if err := exec.Command(d.binary, "--app-name=sigtui", title, body).Run(); err != nil {
			logging.Get(logging.CategoryNotify).Warn("notify-send: %v", err)
		}
	}()
}
