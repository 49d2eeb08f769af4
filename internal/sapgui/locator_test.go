package sapgui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lcouto/saprobot/internal/events"
	apperrors "github.com/lcouto/saprobot/pkg/errors"
)

// captureSink records emitted events for assertions.
type captureSink struct {
	progress   []int
	statuses   []string
	categories []events.Category
	logs       []string
}

func newCaptureSink() *captureSink {
	return &captureSink{}
}

func (s *captureSink) Progress(percent int) {
	s.progress = append(s.progress, percent)
}

func (s *captureSink) Status(label string, category events.Category) {
	s.statuses = append(s.statuses, label)
	s.categories = append(s.categories, category)
}

func (s *captureSink) Log(line string) {
	s.logs = append(s.logs, line)
}

func stubSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	orig := sleep
	sleep = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleep = orig })
	return &slept
}

func TestWaitForElement(t *testing.T) {
	t.Run("resolves immediately without logging", func(t *testing.T) {
		stubSleep(t)
		s := NewFakeSession()
		s.Add("wnd[0]/tbar[0]/okcd")
		sink := newCaptureSink()

		el, err := WaitForElement(s, "wnd[0]/tbar[0]/okcd", 5, time.Second, sink)
		if err != nil {
			t.Fatalf("WaitForElement() error = %v", err)
		}
		if el == nil {
			t.Fatal("element is nil")
		}
		if len(sink.logs) != 0 {
			t.Errorf("logs = %v, want none on immediate hit", sink.logs)
		}
		if got := s.LookupCount("wnd[0]/tbar[0]/okcd"); got != 1 {
			t.Errorf("lookup count = %d, want 1", got)
		}
	})

	t.Run("resolves after misses", func(t *testing.T) {
		slept := stubSleep(t)
		s := NewFakeSession()
		s.Add("wnd[0]/sbar")
		s.MissCount["wnd[0]/sbar"] = 2
		sink := newCaptureSink()

		el, err := WaitForElement(s, "wnd[0]/sbar", 5, 10*time.Millisecond, sink)
		if err != nil {
			t.Fatalf("WaitForElement() error = %v", err)
		}
		if el == nil {
			t.Fatal("element is nil")
		}
		if got := s.LookupCount("wnd[0]/sbar"); got != 3 {
			t.Errorf("lookup count = %d, want 3", got)
		}
		if len(sink.logs) != 2 {
			t.Errorf("retry logs = %d, want 2", len(sink.logs))
		}
		if !strings.Contains(sink.logs[0], "tentativa 1/5") {
			t.Errorf("log = %q, want attempt counter", sink.logs[0])
		}
		if len(*slept) != 2 {
			t.Errorf("sleeps = %d, want 2", len(*slept))
		}
	})

	t.Run("exhausts the budget", func(t *testing.T) {
		stubSleep(t)
		s := NewFakeSession()
		sink := newCaptureSink()

		_, err := WaitForElement(s, "wnd[0]/missing", 3, 100*time.Millisecond, sink)
		if err == nil {
			t.Fatal("expected error when object never appears")
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeLocate) {
			t.Errorf("error type = %T, want locate error", err)
		}
		if !strings.Contains(err.Error(), "wnd[0]/missing") {
			t.Errorf("error = %q, want it to carry the path", err.Error())
		}
		if !strings.Contains(err.Error(), "0.3s") {
			t.Errorf("error = %q, want elapsed budget 0.3s", err.Error())
		}
		if got := s.LookupCount("wnd[0]/missing"); got != 3 {
			t.Errorf("lookup count = %d, want 3", got)
		}
	})

	t.Run("attempt budget below one is clamped", func(t *testing.T) {
		stubSleep(t)
		s := NewFakeSession()
		s.Add("wnd[0]")
		sink := newCaptureSink()

		el, err := WaitForElement(s, "wnd[0]", 0, time.Second, sink)
		if err != nil {
			t.Fatalf("WaitForElement() error = %v", err)
		}
		if el == nil {
			t.Fatal("element is nil")
		}
	})
}

func TestTryPress(t *testing.T) {
	s := NewFakeSession()
	btn := s.Add("wnd[1]/tbar[0]/btn[12]")

	t.Run("present element is pressed", func(t *testing.T) {
		if !TryPress(s, "wnd[1]/tbar[0]/btn[12]") {
			t.Error("TryPress() = false, want true")
		}
		if btn.PressCount != 1 {
			t.Errorf("PressCount = %d, want 1", btn.PressCount)
		}
	})

	t.Run("missing element reports false", func(t *testing.T) {
		if TryPress(s, "wnd[1]/tbar[0]/btn[99]") {
			t.Error("TryPress() = true, want false")
		}
	})

	t.Run("press failure reports false", func(t *testing.T) {
		btn.PressErr = errors.New("element is gone")
		defer func() { btn.PressErr = nil }()
		if TryPress(s, "wnd[1]/tbar[0]/btn[12]") {
			t.Error("TryPress() = true, want false")
		}
	})
}

func TestTrySetText(t *testing.T) {
	s := NewFakeSession()
	field := s.Add("wnd[0]/tbar[0]/okcd")

	if !TrySetText(s, "wnd[0]/tbar[0]/okcd", "/n") {
		t.Error("TrySetText() = false, want true")
	}
	if field.TextVal != "/n" {
		t.Errorf("TextVal = %q, want %q", field.TextVal, "/n")
	}
	if TrySetText(s, "wnd[0]/missing", "/n") {
		t.Error("TrySetText() = true for missing element, want false")
	}
}

func TestTrySendVKey(t *testing.T) {
	s := NewFakeSession()
	wnd := s.Add("wnd[0]")

	if !TrySendVKey(s, "wnd[0]", 0) {
		t.Error("TrySendVKey() = false, want true")
	}
	if len(wnd.SentVKeys) != 1 || wnd.SentVKeys[0] != 0 {
		t.Errorf("SentVKeys = %v, want [0]", wnd.SentVKeys)
	}
	if TrySendVKey(s, "wnd[9]", 0) {
		t.Error("TrySendVKey() = true for missing window, want false")
	}
}
