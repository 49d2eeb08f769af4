// Package sapgui is the port to the SAP GUI Scripting object tree.
//
// The remote application is reached exclusively through dynamic
// lookup-by-path against its live UI object tree; nothing here assumes a
// specific transport. The real transport is the COM adapter in
// transport_windows.go; tests use the in-memory FakeSession.
package sapgui

// Element is a handle to a single node of the remote UI object tree.
// Every method may fail transiently: the element can disappear between
// the lookup and the call while SAP repaints a screen.
type Element interface {
	// Text returns the element's text content (field value, status text).
	Text() (string, error)
	// SetText overwrites the element's text content.
	SetText(value string) error
	// Press activates a button element.
	Press() error
	// SetFocus moves keyboard focus to the element.
	SetFocus() error
	// SelectKey selects an entry of a combo-box element by key.
	SelectKey(key string) error
	// SetCaret positions the caret inside a text field.
	SetCaret(pos int) error
	// SendVKey sends a virtual key (0 = Enter) to a window element.
	SendVKey(vkey int) error
	// Maximize maximizes a window element.
	Maximize() error
	// MessageType returns the status-bar message type code
	// (S/W/E/A/I, empty when no message is shown).
	MessageType() (string, error)
}

// Session is a handle to one authenticated SAP GUI session. All lookups
// are strictly sequential; a Session must never be shared between
// concurrent runs.
type Session interface {
	// FindByID resolves a slash-delimited object path, e.g.
	// "wnd[0]/tbar[0]/okcd". Returns an error when the object is not
	// present on the current screen.
	FindByID(path string) (Element, error)
}

// Transport acquires the scripting entry point of an already-running
// SAP GUI process.
type Transport interface {
	// ScriptingEngine returns the scripting root of the running client.
	ScriptingEngine() (Engine, error)
}

// Engine is the SAP GUI scripting root, holding open connections.
type Engine interface {
	// Connection returns the i-th open connection.
	Connection(i int) (Connection, error)
}

// Connection is one open connection to an SAP application server.
type Connection interface {
	// Session returns the i-th session under this connection.
	Session(i int) (Session, error)
}
