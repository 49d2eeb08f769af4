//go:build !windows

package sapgui

import "fmt"

type comTransport struct{}

// NewComTransport returns the COM-backed transport. SAP GUI Scripting is a
// Windows COM interface; on other platforms the transport always fails to
// attach, which the connector reports as a connection error.
func NewComTransport() Transport {
	return &comTransport{}
}

func (t *comTransport) ScriptingEngine() (Engine, error) {
	return nil, fmt.Errorf("SAP GUI Scripting is only available on Windows")
}
