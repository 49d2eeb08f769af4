package sapgui

import (
	"fmt"
	"time"

	"github.com/lcouto/saprobot/internal/events"
	"github.com/lcouto/saprobot/pkg/errors"
)

// sleep is swapped out by tests to avoid real waiting
var sleep = time.Sleep

// WaitForElement polls the session for an object path until it resolves
// or the attempt budget runs out. The first attempt is immediate; each
// retry after it emits a log event so the operator can tell waiting from
// stalling. On exhaustion it returns a locate error carrying the path and
// elapsed budget; callers decide whether that aborts their own attempt.
func WaitForElement(s Session, path string, attempts int, interval time.Duration, sink events.Sink) (Element, error) {
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		el, err := s.FindByID(path)
		if err == nil {
			return el, nil
		}
		if attempt < attempts {
			sink.Log(fmt.Sprintf("🔄 Aguardando objeto %s... (tentativa %d/%d)", path, attempt, attempts))
		}
		sleep(interval)
	}
	elapsed := time.Duration(attempts) * interval
	return nil, errors.NewObjectNotFound("sapgui.WaitForElement", path, elapsed)
}

// TryPress locates an object and presses it, reporting success. It never
// returns an error; dialog dismissal is best-effort by contract.
func TryPress(s Session, path string) bool {
	el, err := s.FindByID(path)
	if err != nil {
		return false
	}
	return el.Press() == nil
}

// TrySetText locates an object and sets its text, reporting success.
func TrySetText(s Session, path, value string) bool {
	el, err := s.FindByID(path)
	if err != nil {
		return false
	}
	return el.SetText(value) == nil
}

// TrySendVKey locates a window and sends a virtual key, reporting success.
func TrySendVKey(s Session, path string, vkey int) bool {
	el, err := s.FindByID(path)
	if err != nil {
		return false
	}
	return el.SendVKey(vkey) == nil
}
