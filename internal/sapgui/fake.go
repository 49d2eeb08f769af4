package sapgui

import (
	"fmt"
	"sync"
)

// FakeElement is an in-memory Element for testing. Zero value behaves as
// an ordinary writable text field with no status message.
type FakeElement struct {
	ID      string
	TextVal string

	// Error overrides, nil means the call succeeds
	TextErr     error
	SetTextErr  error
	PressErr    error
	FocusErr    error
	SelectErr   error
	CaretErr    error
	VKeyErr     error
	MaximizeErr error
	MsgTypeErr  error

	// IgnoreSetText simulates a field that silently refuses the write,
	// leaving TextVal unchanged (verify-mismatch scenarios)
	IgnoreSetText bool

	// Status-bar behavior: MsgTypeQueue values are consumed one per
	// MessageType call; once drained, MsgTypeVal is returned.
	MsgTypeVal   string
	MsgTypeQueue []string

	// Call recording
	PressCount  int
	FocusCount  int
	SelectedKey string
	CaretPos    int
	SentVKeys   []int
	Maximized   bool
	SetTexts    []string
}

func (e *FakeElement) Text() (string, error) {
	if e.TextErr != nil {
		return "", e.TextErr
	}
	return e.TextVal, nil
}

func (e *FakeElement) SetText(value string) error {
	if e.SetTextErr != nil {
		return e.SetTextErr
	}
	e.SetTexts = append(e.SetTexts, value)
	if !e.IgnoreSetText {
		e.TextVal = value
	}
	return nil
}

func (e *FakeElement) Press() error {
	if e.PressErr != nil {
		return e.PressErr
	}
	e.PressCount++
	return nil
}

func (e *FakeElement) SetFocus() error {
	if e.FocusErr != nil {
		return e.FocusErr
	}
	e.FocusCount++
	return nil
}

func (e *FakeElement) SelectKey(key string) error {
	if e.SelectErr != nil {
		return e.SelectErr
	}
	e.SelectedKey = key
	return nil
}

func (e *FakeElement) SetCaret(pos int) error {
	if e.CaretErr != nil {
		return e.CaretErr
	}
	e.CaretPos = pos
	return nil
}

func (e *FakeElement) SendVKey(vkey int) error {
	if e.VKeyErr != nil {
		return e.VKeyErr
	}
	e.SentVKeys = append(e.SentVKeys, vkey)
	return nil
}

func (e *FakeElement) Maximize() error {
	if e.MaximizeErr != nil {
		return e.MaximizeErr
	}
	e.Maximized = true
	return nil
}

func (e *FakeElement) MessageType() (string, error) {
	if e.MsgTypeErr != nil {
		return "", e.MsgTypeErr
	}
	if len(e.MsgTypeQueue) > 0 {
		v := e.MsgTypeQueue[0]
		e.MsgTypeQueue = e.MsgTypeQueue[1:]
		return v, nil
	}
	return e.MsgTypeVal, nil
}

// FakeSession is an in-memory Session backed by a path-to-element map.
type FakeSession struct {
	mu sync.Mutex

	// Elements maps object paths to elements; lookups for unknown paths
	// fail.
	Elements map[string]*FakeElement

	// MissCount maps a path to a number of lookups that must fail before
	// the element resolves (locator polling scenarios).
	MissCount map[string]int

	// FindHook, when set, runs before every lookup and may return an
	// error to force a failure.
	FindHook func(path string) error

	// Lookups records every FindByID call in order.
	Lookups []string
}

// NewFakeSession creates an empty fake session
func NewFakeSession() *FakeSession {
	return &FakeSession{
		Elements:  make(map[string]*FakeElement),
		MissCount: make(map[string]int),
	}
}

// Add registers an element under its object path and returns it
func (s *FakeSession) Add(path string) *FakeElement {
	el := &FakeElement{ID: path}
	s.Elements[path] = el
	return el
}

// FindByID resolves a path against the fake tree
func (s *FakeSession) FindByID(path string) (Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Lookups = append(s.Lookups, path)

	if s.FindHook != nil {
		if err := s.FindHook(path); err != nil {
			return nil, err
		}
	}
	if n := s.MissCount[path]; n > 0 {
		s.MissCount[path] = n - 1
		return nil, fmt.Errorf("object not present: %s", path)
	}
	el, ok := s.Elements[path]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", path)
	}
	return el, nil
}

// LookupCount returns how many times a path was looked up
func (s *FakeSession) LookupCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, p := range s.Lookups {
		if p == path {
			count++
		}
	}
	return count
}

// FakeTransport is an in-memory Transport chain for connector tests.
type FakeTransport struct {
	EngineErr     error
	ConnectionErr error
	SessionErr    error
	Sess          Session
}

func (t *FakeTransport) ScriptingEngine() (Engine, error) {
	if t.EngineErr != nil {
		return nil, t.EngineErr
	}
	return &fakeEngine{t: t}, nil
}

type fakeEngine struct{ t *FakeTransport }

func (e *fakeEngine) Connection(i int) (Connection, error) {
	if e.t.ConnectionErr != nil {
		return nil, e.t.ConnectionErr
	}
	return &fakeConnection{t: e.t}, nil
}

type fakeConnection struct{ t *FakeTransport }

func (c *fakeConnection) Session(i int) (Session, error) {
	if c.t.SessionErr != nil {
		return nil, c.t.SessionErr
	}
	return c.t.Sess, nil
}
