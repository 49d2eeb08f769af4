//go:build windows

package sapgui

import (
	"fmt"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// comTransport reaches the running SAP GUI through its COM automation
// object ("SAPGUI"), the same entry point SAP GUI Scripting exposes to
// VBScript recorders.
type comTransport struct{}

// NewComTransport returns the COM-backed transport for the running SAP GUI.
func NewComTransport() Transport {
	return &comTransport{}
}

func (t *comTransport) ScriptingEngine() (Engine, error) {
	// S_FALSE (already initialized on this thread) surfaces as an error
	// in go-ole and is harmless.
	_ = ole.CoInitialize(0)

	unknown, err := oleutil.GetActiveObject("SAPGUI")
	if err != nil {
		return nil, fmt.Errorf("SAP GUI is not running: %w", err)
	}
	disp, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, fmt.Errorf("SAPGUI object has no dispatch interface: %w", err)
	}
	engine, err := oleutil.CallMethod(disp, "GetScriptingEngine")
	if err != nil {
		return nil, fmt.Errorf("scripting is disabled in this SAP GUI: %w", err)
	}
	return &comEngine{obj: engine.ToIDispatch()}, nil
}

type comEngine struct{ obj *ole.IDispatch }

func (e *comEngine) Connection(i int) (Connection, error) {
	v, err := oleutil.CallMethod(e.obj, "Children", i)
	if err != nil {
		return nil, fmt.Errorf("connection %d not available: %w", i, err)
	}
	return &comConnection{obj: v.ToIDispatch()}, nil
}

type comConnection struct{ obj *ole.IDispatch }

func (c *comConnection) Session(i int) (Session, error) {
	v, err := oleutil.CallMethod(c.obj, "Children", i)
	if err != nil {
		return nil, fmt.Errorf("session %d not available: %w", i, err)
	}
	return &comSession{obj: v.ToIDispatch()}, nil
}

type comSession struct{ obj *ole.IDispatch }

func (s *comSession) FindByID(path string) (Element, error) {
	v, err := oleutil.CallMethod(s.obj, "FindById", path)
	if err != nil {
		return nil, fmt.Errorf("findById %s: %w", path, err)
	}
	return &comElement{obj: v.ToIDispatch()}, nil
}

type comElement struct{ obj *ole.IDispatch }

func (e *comElement) Text() (string, error) {
	v, err := oleutil.GetProperty(e.obj, "Text")
	if err != nil {
		return "", err
	}
	return v.ToString(), nil
}

func (e *comElement) SetText(value string) error {
	_, err := oleutil.PutProperty(e.obj, "Text", value)
	return err
}

func (e *comElement) Press() error {
	_, err := oleutil.CallMethod(e.obj, "Press")
	return err
}

func (e *comElement) SetFocus() error {
	_, err := oleutil.CallMethod(e.obj, "SetFocus")
	return err
}

func (e *comElement) SelectKey(key string) error {
	_, err := oleutil.PutProperty(e.obj, "Key", key)
	return err
}

func (e *comElement) SetCaret(pos int) error {
	_, err := oleutil.PutProperty(e.obj, "CaretPosition", pos)
	return err
}

func (e *comElement) SendVKey(vkey int) error {
	_, err := oleutil.CallMethod(e.obj, "SendVKey", vkey)
	return err
}

func (e *comElement) Maximize() error {
	_, err := oleutil.CallMethod(e.obj, "Maximize")
	return err
}

func (e *comElement) MessageType() (string, error) {
	v, err := oleutil.GetProperty(e.obj, "MessageType")
	if err != nil {
		return "", err
	}
	return v.ToString(), nil
}
