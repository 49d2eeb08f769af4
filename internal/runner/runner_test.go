package runner

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lcouto/saprobot/internal/events"
	"github.com/lcouto/saprobot/internal/sapgui"
	apperrors "github.com/lcouto/saprobot/pkg/errors"
	testutil "github.com/lcouto/saprobot/pkg/test"
	"github.com/lcouto/saprobot/pkg/types"
)

// captureSink records emitted events for assertions.
type captureSink struct {
	mu       sync.Mutex
	progress []int
	statuses []string
	logs     []string
}

func (s *captureSink) Progress(percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, percent)
}

func (s *captureSink) Status(label string, _ events.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, label)
}

func (s *captureSink) Log(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, line)
}

func (s *captureSink) hasLog(substr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range s.logs {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// fakeTransactor returns canned outcomes and records what it was given.
type fakeTransactor struct {
	outcome func(rec types.InputRecord, date string) types.OutcomeRecord
	calls   []types.InputRecord
	dates   []string

	// onRun, when set, runs before producing each outcome
	onRun func()
}

func (f *fakeTransactor) Run(rec types.InputRecord, date string) types.OutcomeRecord {
	f.calls = append(f.calls, rec)
	f.dates = append(f.dates, date)
	if f.onRun != nil {
		f.onRun()
	}
	if f.outcome != nil {
		return f.outcome(rec, date)
	}
	return types.OutcomeRecord{
		Order:      rec.Order,
		Line:       rec.Line,
		NewDate:    date,
		Status:     types.StatusSuccess,
		ExecutedAt: time.Now(),
	}
}

// fakeArchiver records uploads.
type fakeArchiver struct {
	paths []string
	err   error
}

func (f *fakeArchiver) UploadFile(_ context.Context, path string) (string, error) {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return "", f.err
	}
	return "relatorios/" + path, nil
}

func newTestRunner(t *testing.T, tx *fakeTransactor) (*Runner, *captureSink) {
	t.Helper()
	cfg := testutil.NewTestConfig(t)
	if err := testutil.WriteInputFile(cfg.InputFile, testutil.NewTestRecords()); err != nil {
		t.Fatal(err)
	}

	sink := &captureSink{}
	transport := &sapgui.FakeTransport{Sess: sapgui.NewFakeSession()}
	r := New(cfg, transport, sink, nil)
	if tx != nil {
		r.newTransactor = func(sapgui.Session) Transactor { return tx }
	}
	return r, sink
}

func TestRunner_Run(t *testing.T) {
	tx := &fakeTransactor{}
	r, sink := newTestRunner(t, tx)

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.RunID == "" {
		t.Error("RunID is empty")
	}
	if result.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", result.TotalRecords)
	}
	if len(result.Outcomes) != 3 {
		t.Fatalf("outcome count = %d, want 3", len(result.Outcomes))
	}
	if result.SuccessCount != 3 || result.ErrorCount != 0 {
		t.Errorf("tally = %d/%d, want 3/0", result.SuccessCount, result.ErrorCount)
	}
	if result.Status() != types.RunSuccess {
		t.Errorf("Status() = %v, want success", result.Status())
	}
	if result.Cancelled {
		t.Error("Cancelled = true, want false")
	}

	// Records are processed in file order with normalized dates
	wantOrders := []string{"4500012345", "4500012346", "4500012347"}
	for i, want := range wantOrders {
		if tx.calls[i].Order != want {
			t.Errorf("calls[%d].Order = %q, want %q", i, tx.calls[i].Order, want)
		}
	}
	wantDates := []string{"15.03.2024", "16.03.2024", "17.03.2024"}
	for i, want := range wantDates {
		if tx.dates[i] != want {
			t.Errorf("dates[%d] = %q, want %q", i, tx.dates[i], want)
		}
	}

	if result.ReportPath == "" {
		t.Fatal("ReportPath is empty")
	}
	if _, err := os.Stat(result.ReportPath); err != nil {
		t.Errorf("report file: %v", err)
	}

	if !sink.hasLog("3 registros carregados") {
		t.Error("missing load confirmation log")
	}
	if !sink.hasLog("Resumo da execução") {
		t.Error("missing summary log")
	}
}

func TestRunner_Run_ProgressIsMonotonic(t *testing.T) {
	r, sink := newTestRunner(t, &fakeTransactor{})

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(sink.progress) == 0 {
		t.Fatal("no progress events")
	}
	prev := -1
	for i, p := range sink.progress {
		if p < 0 || p > 100 {
			t.Errorf("progress[%d] = %d, out of range", i, p)
		}
		if p < prev {
			t.Errorf("progress[%d] = %d decreased from %d", i, p, prev)
		}
		prev = p
	}
	if sink.progress[len(sink.progress)-1] != 100 {
		t.Errorf("final progress = %d, want 100", sink.progress[len(sink.progress)-1])
	}
}

func TestRunner_Run_PartialFailures(t *testing.T) {
	tx := &fakeTransactor{
		outcome: func(rec types.InputRecord, date string) types.OutcomeRecord {
			status := types.StatusSuccess
			if rec.Order == "4500012346" {
				status = types.StatusError
			}
			return types.OutcomeRecord{Order: rec.Order, Line: rec.Line, NewDate: date, Status: status}
		},
	}
	r, sink := newTestRunner(t, tx)

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Outcomes) != 3 {
		t.Fatalf("outcome count = %d, want 3: a record failure must not abort the batch", len(result.Outcomes))
	}
	if result.Status() != types.RunPartial {
		t.Errorf("Status() = %v, want partial", result.Status())
	}

	found := false
	for _, label := range sink.statuses {
		if strings.Contains(label, "Concluído com 1 erros") {
			found = true
		}
	}
	if !found {
		t.Errorf("statuses = %v, want partial completion label", sink.statuses)
	}
}

func TestRunner_Run_MissingInputFile(t *testing.T) {
	cfg := testutil.NewTestConfig(t)
	sink := &captureSink{}
	transport := &sapgui.FakeTransport{Sess: sapgui.NewFakeSession()}
	r := New(cfg, transport, sink, nil)

	result, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeSource) {
		t.Errorf("error type = %T, want source error", err)
	}
	if len(result.Outcomes) != 0 {
		t.Errorf("outcome count = %d, want 0", len(result.Outcomes))
	}
	if result.ReportPath != "" {
		t.Errorf("ReportPath = %q, want empty", result.ReportPath)
	}

	found := false
	for _, label := range sink.statuses {
		if label == "Arquivo não encontrado" {
			found = true
		}
	}
	if !found {
		t.Errorf("statuses = %v, want file-not-found label", sink.statuses)
	}
}

func TestRunner_Run_ConnectFailure(t *testing.T) {
	cfg := testutil.NewTestConfig(t)
	if err := testutil.WriteInputFile(cfg.InputFile, testutil.NewTestRecords()); err != nil {
		t.Fatal(err)
	}
	sink := &captureSink{}
	transport := &sapgui.FakeTransport{EngineErr: errors.New("SAPGUI not running")}
	r := New(cfg, transport, sink, nil)

	result, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for failed attach")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeConnection) {
		t.Errorf("error type = %T, want connection error", err)
	}
	if len(result.Outcomes) != 0 {
		t.Errorf("outcome count = %d, want 0", len(result.Outcomes))
	}
	if result.ReportPath != "" {
		t.Errorf("ReportPath = %q, want no result file on fatal attach failure", result.ReportPath)
	}
}

func TestRunner_Run_CancelBetweenRecords(t *testing.T) {
	var r *Runner
	tx := &fakeTransactor{}
	tx.onRun = func() {
		if len(tx.calls) == 1 {
			r.Cancel()
		}
	}
	r, sink := newTestRunner(t, tx)

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !result.Cancelled {
		t.Error("Cancelled = false, want true")
	}
	if len(tx.calls) != 1 {
		t.Errorf("processed records = %d, want 1: the record in flight finishes, the rest are skipped", len(tx.calls))
	}
	if len(result.Outcomes) != 1 {
		t.Errorf("outcome count = %d, want 1", len(result.Outcomes))
	}
	// Completed outcomes are still persisted
	if result.ReportPath == "" {
		t.Error("ReportPath is empty, want report for completed records")
	}
	if !sink.hasLog("cancelada pelo usuário") {
		t.Error("missing cancellation log")
	}
}

func TestRunner_Run_ContextCancellation(t *testing.T) {
	tx := &fakeTransactor{}
	r, _ := newTestRunner(t, tx)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Cancelled {
		t.Error("Cancelled = false, want true")
	}
	if len(tx.calls) != 0 {
		t.Errorf("processed records = %d, want 0", len(tx.calls))
	}
}

func TestRunner_Run_CancelFlagResetsBetweenRuns(t *testing.T) {
	tx := &fakeTransactor{}
	r, _ := newTestRunner(t, tx)
	r.Cancel()

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Cancelled {
		t.Error("Cancelled = true, want false: a stale cancel flag must not affect a new run")
	}
	if len(tx.calls) != 3 {
		t.Errorf("processed records = %d, want 3", len(tx.calls))
	}
}

func TestRunner_Run_Archiving(t *testing.T) {
	t.Run("report is uploaded", func(t *testing.T) {
		archiver := &fakeArchiver{}
		tx := &fakeTransactor{}
		r, sink := newTestRunner(t, tx)
		r.archiver = archiver

		result, err := r.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if len(archiver.paths) != 1 || archiver.paths[0] != result.ReportPath {
			t.Errorf("uploaded = %v, want [%s]", archiver.paths, result.ReportPath)
		}
		if !sink.hasLog("arquivado no S3") {
			t.Error("missing archive confirmation log")
		}
	})

	t.Run("upload failure does not fail the run", func(t *testing.T) {
		archiver := &fakeArchiver{err: errors.New("bucket unreachable")}
		r, sink := newTestRunner(t, &fakeTransactor{})
		r.archiver = archiver

		result, err := r.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if result.Status() != types.RunSuccess {
			t.Errorf("Status() = %v, want success despite archive failure", result.Status())
		}
		if !sink.hasLog("Falha ao arquivar") {
			t.Error("missing archive failure log")
		}
	})
}

func TestRunner_Run_EmptyInputFile(t *testing.T) {
	cfg := testutil.NewTestConfig(t)
	if err := testutil.WriteInputFile(cfg.InputFile, nil); err != nil {
		t.Fatal(err)
	}
	sink := &captureSink{}
	transport := &sapgui.FakeTransport{Sess: sapgui.NewFakeSession()}
	r := New(cfg, transport, sink, nil)
	tx := &fakeTransactor{}
	r.newTransactor = func(sapgui.Session) Transactor { return tx }

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.TotalRecords != 0 || len(tx.calls) != 0 {
		t.Errorf("records = %d, calls = %d, want 0/0", result.TotalRecords, len(tx.calls))
	}
	if result.Status() != types.RunSuccess {
		t.Errorf("Status() = %v, want success for empty batch", result.Status())
	}
	if result.ReportPath == "" {
		t.Error("ReportPath is empty, want header-only report")
	}
}
