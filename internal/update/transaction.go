// Package update implements the per-record field update transaction: the
// scripted walk through ME22N that opens an order, selects a line item,
// overwrites its delivery date and saves, with bounded retries.
package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/lcouto/saprobot/internal/events"
	"github.com/lcouto/saprobot/internal/sapgui"
	"github.com/lcouto/saprobot/pkg/errors"
	"github.com/lcouto/saprobot/pkg/types"
)

// TransactionCode is the SAP transaction driven by the robot.
const TransactionCode = "me22n"

// Object paths inside the ME22N screen, recorded from SAP GUI Scripting.
const (
	idMainWindow   = "wnd[0]"
	idPopupWindow  = "wnd[1]"
	idOKCode       = "wnd[0]/tbar[0]/okcd"
	idModalCancel  = "wnd[1]/tbar[0]/btn[12]"
	idConfirmSave  = "wnd[1]/usr/btnSPOP-VAROPTION1"
	idPopupEnter   = "wnd[1]/tbar[0]/btn[0]"
	idSearchButton = "wnd[0]/tbar[1]/btn[17]"
	idSaveButton   = "wnd[0]/tbar[0]/btn[11]"
	idOrderField   = "wnd[1]/usr/subSUB0:SAPLMEGUI:0003/ctxtMEPO_SELECT-EBELN"

	idLineCombo = "wnd[0]/usr/subSUB0:SAPLMEGUI:0015/subSUB3:SAPLMEVIEWS:1100/" +
		"subSUB2:SAPLMEVIEWS:1200/subSUB1:SAPLMEGUI:1301/" +
		"subSUB1:SAPLMEGUI:6000/cmbDYN_6000-LIST"

	idDateCell = "wnd[0]/usr/subSUB0:SAPLMEGUI:0015/subSUB3:SAPLMEVIEWS:1100/" +
		"subSUB2:SAPLMEVIEWS:1200/subSUB1:SAPLMEGUI:1301/" +
		"subSUB2:SAPLMEGUI:1303/tabsITEM_DETAIL/tabpTABIDT5/" +
		"ssubTABSTRIPCONTROL1SUB:SAPLMEGUI:1320/" +
		"tblSAPLMEGUITC_1320/ctxtMEPO1320-EEIND[2,0]"
)

// Screen settle delays, matching what the recorded flow needs for SAP to
// finish repainting before the next lookup.
const (
	settleShort  = 500 * time.Millisecond
	settleOpen   = time.Second
	settleSearch = 1500 * time.Millisecond
	settleSave   = 1500 * time.Millisecond
)

// maxDialogDismiss bounds the stray-dialog cleanup loop during reset.
const maxDialogDismiss = 5

// Config holds the transaction's retry knobs.
type Config struct {
	// MaxAttempts is the number of full restarts per record, minimum 1.
	MaxAttempts int
	// LocateAttempts is the polling budget for the line selector and the
	// date cell, minimum 1.
	LocateAttempts int
	// LocateInterval is the pause between locate polls.
	LocateInterval time.Duration
	// RetryDelay is the pause before restarting a failed attempt.
	RetryDelay time.Duration
}

func (c *Config) applyDefaults() {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 2
	}
	if c.LocateAttempts < 1 {
		c.LocateAttempts = 5
	}
	if c.LocateInterval == 0 {
		c.LocateInterval = settleShort
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 2 * time.Second
	}
}

// Transaction drives the date update for single records against one SAP
// session. It is not safe for concurrent use: the session is an exclusive
// resource and all steps against it are strictly sequential.
type Transaction struct {
	session    sapgui.Session
	classifier *sapgui.Classifier
	sink       events.Sink
	cfg        Config

	// injected for tests
	sleep func(time.Duration)
	now   func() time.Time
}

// New creates a Transaction bound to a session
func New(session sapgui.Session, classifier *sapgui.Classifier, sink events.Sink, cfg Config) *Transaction {
	cfg.applyDefaults()
	return &Transaction{
		session:    session,
		classifier: classifier,
		sink:       sink,
		cfg:        cfg,
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

// Run processes one input record, restarting from the open-view step on
// failure up to MaxAttempts times, and always returns a terminal outcome.
// The normalized date must already be in dd.mm.yyyy form.
func (t *Transaction) Run(rec types.InputRecord, normalizedDate string) types.OutcomeRecord {
	var lastErr error

	for attempt := 1; attempt <= t.cfg.MaxAttempts; attempt++ {
		t.sink.Log(fmt.Sprintf("🔄 Processando pedido %s, linha %d (tentativa %d/%d)",
			rec.Order, rec.Line, attempt, t.cfg.MaxAttempts))
		t.reset()

		outcome, err := t.attempt(rec, normalizedDate)
		if err == nil {
			return outcome
		}
		lastErr = err

		t.sink.Log(fmt.Sprintf("❌ Erro na tentativa %d: %v", attempt, err))
		t.reset()
		if attempt < t.cfg.MaxAttempts {
			t.sink.Log(fmt.Sprintf("🔄 Tentando novamente em %v...", t.cfg.RetryDelay))
			t.sleep(t.cfg.RetryDelay)
		}
	}

	msg := fmt.Sprintf("❌ Pedido %s, linha %d falhou após %d tentativas: %v",
		rec.Order, rec.Line, t.cfg.MaxAttempts, lastErr)
	t.sink.Log(msg)
	return t.outcome(rec, normalizedDate, types.StatusError, msg)
}

// attempt runs one pass of the state machine. A nil error means a
// terminal SUCCESS or SKIPPED outcome; any error aborts the pass.
func (t *Transaction) attempt(rec types.InputRecord, date string) (types.OutcomeRecord, error) {
	var none types.OutcomeRecord

	if err := t.openView(rec); err != nil {
		return none, err
	}
	if err := t.searchOrder(rec); err != nil {
		return none, err
	}
	if err := t.selectLine(rec); err != nil {
		return none, err
	}

	cell, current, err := t.readField()
	if err != nil {
		return none, err
	}
	if current == date {
		msg := fmt.Sprintf("⚠️ Pedido %s, linha %d já estava com a data %s", rec.Order, rec.Line, date)
		t.sink.Log(msg)
		return t.outcome(rec, date, types.StatusSkipped, msg), nil
	}

	if err := t.writeField(rec, cell, date); err != nil {
		return none, err
	}
	if err := t.save(rec); err != nil {
		return none, err
	}
	if cls := t.classifier.Check(t.session, t.sink); cls != nil {
		return none, errors.NewTransactionError("update.checkStatus", "Erro após salvar: "+cls.Message, nil)
	}

	msg := fmt.Sprintf("✅ Pedido %s, linha %d atualizado para %s", rec.Order, rec.Line, date)
	t.sink.Log(msg)
	return t.outcome(rec, date, types.StatusSuccess, msg), nil
}

// reset clears stray modal dialogs and returns the session to a neutral
// command state. Everything here is best-effort: a half-broken screen
// must not keep the next attempt from starting.
func (t *Transaction) reset() {
	for i := 0; i < maxDialogDismiss; i++ {
		if !sapgui.TryPress(t.session, idModalCancel) {
			break
		}
	}

	if !sapgui.TrySetText(t.session, idOKCode, "/n") {
		t.sink.Log("⚠️ Erro ao limpar tela: campo de comando indisponível")
		return
	}
	sapgui.TrySendVKey(t.session, idMainWindow, 0)
	t.sleep(settleShort)

	if sapgui.TryPress(t.session, idConfirmSave) {
		t.sleep(settleShort)
	}
}

func (t *Transaction) openView(rec types.InputRecord) error {
	t.sink.Log(fmt.Sprintf("📋 Abrindo transação ME22N para pedido %s", rec.Order))

	wnd, err := t.find("update.openView", idMainWindow)
	if err != nil {
		return err
	}
	if err := wnd.Maximize(); err != nil {
		return errors.NewTransactionError("update.openView", "falha ao maximizar janela", err)
	}

	okcd, err := t.find("update.openView", idOKCode)
	if err != nil {
		return err
	}
	if err := okcd.SetText(TransactionCode); err != nil {
		return errors.NewTransactionError("update.openView", "falha ao informar transação", err)
	}
	if err := wnd.SendVKey(0); err != nil {
		return errors.NewTransactionError("update.openView", "falha ao confirmar transação", err)
	}
	t.sleep(settleOpen)

	if cls := t.classifier.Check(t.session, t.sink); cls != nil {
		return errors.NewTransactionError("update.openView", "Erro ao abrir ME22N: "+cls.Message, nil)
	}
	return nil
}

func (t *Transaction) searchOrder(rec types.InputRecord) error {
	t.sink.Log(fmt.Sprintf("🔍 Buscando pedido %s", rec.Order))

	search, err := t.find("update.searchOrder", idSearchButton)
	if err != nil {
		return err
	}
	if err := search.Press(); err != nil {
		return errors.NewTransactionError("update.searchOrder", "falha ao abrir busca de pedido", err)
	}

	field, err := t.find("update.searchOrder", idOrderField)
	if err != nil {
		return err
	}
	if err := field.SetText(rec.Order); err != nil {
		return errors.NewTransactionError("update.searchOrder", "falha ao informar pedido", err)
	}

	popup, err := t.find("update.searchOrder", idPopupWindow)
	if err != nil {
		return err
	}
	if err := popup.SendVKey(0); err != nil {
		return errors.NewTransactionError("update.searchOrder", "falha ao confirmar busca", err)
	}
	t.sleep(settleSearch)

	if cls := t.classifier.Check(t.session, t.sink); cls != nil {
		return errors.NewTransactionError("update.searchOrder", "Pedido não encontrado: "+cls.Message, nil)
	}
	return nil
}

// selectLine navigates to the item line. The line selector combo is keyed
// by line/10, space-padded to width 4 (SAP numbers item lines in tens).
func (t *Transaction) selectLine(rec types.InputRecord) error {
	t.sink.Log(fmt.Sprintf("📝 Navegando para linha %d", rec.Line))

	key := LineKey(rec.Line)
	combo, err := sapgui.WaitForElement(t.session, idLineCombo, t.cfg.LocateAttempts, t.cfg.LocateInterval, t.sink)
	if err != nil {
		return err
	}
	if err := combo.SetFocus(); err != nil {
		return errors.NewTransactionError("update.selectLine", "falha ao focar seletor de linha", err)
	}
	if err := combo.SelectKey(key); err != nil {
		return errors.NewTransactionError("update.selectLine", "falha ao selecionar linha", err)
	}
	t.sleep(settleOpen)
	return nil
}

// readField locates the date cell and returns it with its trimmed text.
func (t *Transaction) readField() (sapgui.Element, string, error) {
	cell, err := sapgui.WaitForElement(t.session, idDateCell, t.cfg.LocateAttempts, t.cfg.LocateInterval, t.sink)
	if err != nil {
		return nil, "", err
	}
	text, err := cell.Text()
	if err != nil {
		return nil, "", errors.NewTransactionError("update.readField", "falha ao ler campo de data", err)
	}
	return cell, strings.TrimSpace(text), nil
}

// writeField sets the date cell and verifies the write actually stuck.
func (t *Transaction) writeField(rec types.InputRecord, cell sapgui.Element, date string) error {
	t.sink.Log(fmt.Sprintf("📅 Alterando data para %s", date))

	if err := cell.SetText(date); err != nil {
		return errors.NewTransactionError("update.writeField", "falha ao escrever data", err)
	}
	if err := cell.SetCaret(2); err != nil {
		return errors.NewTransactionError("update.writeField", "falha ao posicionar cursor", err)
	}
	t.sleep(settleShort)

	actual, err := cell.Text()
	if err != nil {
		return errors.NewTransactionError("update.writeField", "falha ao reler campo de data", err)
	}
	actual = strings.TrimSpace(actual)
	if actual != date {
		return errors.NewTransactionError("update.writeField",
			fmt.Sprintf("O campo de data não foi atualizado. Esperado: %s, Atual: %s", date, actual), nil)
	}
	return nil
}

// save presses the save control and dismisses the known follow-up
// confirmation dialogs, each individually best-effort.
func (t *Transaction) save(rec types.InputRecord) error {
	t.sink.Log(fmt.Sprintf("💾 Salvando alterações do pedido %s", rec.Order))

	btn, err := t.find("update.save", idSaveButton)
	if err != nil {
		return err
	}
	if err := btn.Press(); err != nil {
		return errors.NewTransactionError("update.save", "falha ao salvar", err)
	}
	t.sleep(settleSave)

	if sapgui.TryPress(t.session, idPopupEnter) {
		t.sleep(settleShort)
	}
	if sapgui.TryPress(t.session, idConfirmSave) {
		t.sleep(settleShort)
	}
	return nil
}

// find resolves a path once, wrapping failures as transaction errors.
func (t *Transaction) find(op, path string) (sapgui.Element, error) {
	el, err := t.session.FindByID(path)
	if err != nil {
		return nil, errors.NewTransactionError(op, fmt.Sprintf("objeto %s indisponível", path), err)
	}
	return el, nil
}

func (t *Transaction) outcome(rec types.InputRecord, date string, status types.OutcomeStatus, msg string) types.OutcomeRecord {
	return types.OutcomeRecord{
		Order:      rec.Order,
		Line:       rec.Line,
		NewDate:    date,
		Status:     status,
		Message:    msg,
		ExecutedAt: t.now(),
	}
}

// LineKey derives the 4-wide, right-aligned line selector key from an
// item line number. SAP numbers ME22N item lines in tens, so line 10 maps
// to key "   1".
func LineKey(line int) string {
	return fmt.Sprintf("%4d", line/10)
}
