package sapgui

import (
	"github.com/lcouto/saprobot/internal/events"
	"github.com/lcouto/saprobot/pkg/errors"
)

// Connect walks the scripting tree of an already-running, already
// logged-in SAP GUI: scripting engine, first connection, first session.
//
// There is no retry at any step. If the prerequisite desktop client is
// not running or not logged in, waiting does not help - the operator has
// to intervene. Each sub-step emits a log event so the operator can see
// exactly where the attach failed.
func Connect(tr Transport, sink events.Sink) (Session, error) {
	sink.Log("🔄 Inicializando conexão com SAP...")
	sink.Status("Inicializando SAP", events.CategoryRunning)

	sink.Log("🔄 Obtendo SAP GUI...")
	engine, err := tr.ScriptingEngine()
	if err != nil {
		sink.Log("❌ Não foi possível conectar ao SAP: " + err.Error())
		sink.Status("Erro na conexão SAP", events.CategoryError)
		return nil, errors.NewConnectionError("sapgui.Connect", "scripting engine unavailable", err)
	}

	sink.Log("🔄 Estabelecendo conexão...")
	conn, err := engine.Connection(0)
	if err != nil {
		sink.Log("❌ Não foi possível conectar ao SAP: " + err.Error())
		sink.Status("Erro na conexão SAP", events.CategoryError)
		return nil, errors.NewConnectionError("sapgui.Connect", "no open connection", err)
	}

	sink.Log("🔄 Inicializando sessão...")
	session, err := conn.Session(0)
	if err != nil {
		sink.Log("❌ Não foi possível conectar ao SAP: " + err.Error())
		sink.Status("Erro na conexão SAP", events.CategoryError)
		return nil, errors.NewConnectionError("sapgui.Connect", "no session available", err)
	}

	sink.Log("✅ Conexão SAP estabelecida com sucesso!")
	sink.Status("Conectado ao SAP", events.CategorySuccess)
	return session, nil
}
