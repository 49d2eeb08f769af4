// Package runner orchestrates one batch run: load the input records,
// attach to the SAP session, drive the field update transaction per
// record, and persist the aggregated outcomes.
package runner

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lcouto/saprobot/internal/config"
	"github.com/lcouto/saprobot/internal/events"
	"github.com/lcouto/saprobot/internal/input"
	"github.com/lcouto/saprobot/internal/report"
	"github.com/lcouto/saprobot/internal/sapgui"
	"github.com/lcouto/saprobot/internal/update"
	"github.com/lcouto/saprobot/pkg/types"
)

// Transactor processes one input record into a terminal outcome.
type Transactor interface {
	Run(rec types.InputRecord, normalizedDate string) types.OutcomeRecord
}

// Archiver uploads a run artifact to remote storage.
type Archiver interface {
	UploadFile(ctx context.Context, path string) (string, error)
}

// Runner executes batch runs. One Runner processes one batch at a time;
// the SAP session it acquires is owned exclusively for the run's
// duration and every step against it is sequential.
type Runner struct {
	cfg       *config.Config
	transport sapgui.Transport
	sink      events.Sink
	archiver  Archiver // nil disables archiving

	cancelled atomic.Bool

	// injected for tests
	now           func() time.Time
	newTransactor func(s sapgui.Session) Transactor
}

// New creates a Runner. The archiver may be nil.
func New(cfg *config.Config, transport sapgui.Transport, sink events.Sink, archiver Archiver) *Runner {
	r := &Runner{
		cfg:       cfg,
		transport: transport,
		sink:      sink,
		archiver:  archiver,
		now:       time.Now,
	}
	r.newTransactor = func(s sapgui.Session) Transactor {
		return update.New(s, sapgui.NewClassifier(cfg.BlockingPhrases), sink, update.Config{
			MaxAttempts:    cfg.MaxAttempts,
			LocateAttempts: cfg.LocateAttempts,
			LocateInterval: cfg.LocateInterval,
			RetryDelay:     cfg.RetryDelay,
		})
	}
	return r
}

// Cancel requests a cooperative stop. The flag is checked between
// records only; a record already in flight runs to completion.
func (r *Runner) Cancel() {
	r.cancelled.Store(true)
}

// Run executes one batch. Outcomes are produced and persisted in input
// order. A missing input file or a failed SAP attach aborts the run with
// zero outcomes and no result file; per-record failures never abort the
// batch.
func (r *Runner) Run(ctx context.Context) (*types.RunResult, error) {
	start := r.now()
	r.cancelled.Store(false)

	result := &types.RunResult{RunID: uuid.New().String()}

	r.sink.Log(fmt.Sprintf("🤖 SAP Robot iniciado (execução %s)", result.RunID))
	r.sink.Log(fmt.Sprintf("📁 Arquivo: %s", r.cfg.InputFile))
	r.sink.Status("Carregando dados", events.CategoryRunning)
	r.sink.Progress(5)

	r.sink.Log("📊 Carregando dados do arquivo...")
	records, err := input.Load(r.cfg.InputFile)
	if err != nil {
		r.sink.Log(fmt.Sprintf("❌ Erro ao ler arquivo: %v", err))
		r.sink.Status("Arquivo não encontrado", events.CategoryError)
		result.Duration = r.now().Sub(start)
		return result, err
	}
	r.sink.Log(fmt.Sprintf("✅ %d registros carregados", len(records)))
	result.TotalRecords = len(records)
	r.sink.Progress(10)

	r.sink.Progress(15)
	session, err := sapgui.Connect(r.transport, r.sink)
	if err != nil {
		r.sink.Log("❌ Não foi possível conectar ao SAP. Encerrando.")
		r.sink.Status("Falha na conexão", events.CategoryError)
		result.Duration = r.now().Sub(start)
		return result, err
	}

	r.sink.Progress(25)
	r.sink.Status("Processando pedidos", events.CategoryRunning)

	tx := r.newTransactor(session)
	total := len(records)

	for i, rec := range records {
		if ctx.Err() != nil || r.cancelled.Load() {
			result.Cancelled = true
			r.sink.Log("⚠️ Execução cancelada pelo usuário")
			break
		}

		r.sink.Progress(25 + i*65/total)

		normalized := update.NormalizeDate(rec.NewDate)

		r.sink.Log("\n" + strings.Repeat("=", 50))
		r.sink.Log(fmt.Sprintf("📋 Processando %d/%d: Pedido %s, Linha %d", i+1, total, rec.Order, rec.Line))
		r.sink.Status(fmt.Sprintf("Processando pedido %s", rec.Order), events.CategoryRunning)

		outcome := tx.Run(rec, normalized)
		result.Outcomes = append(result.Outcomes, outcome)
	}

	r.sink.Progress(95)
	r.sink.Status("Salvando logs", events.CategoryRunning)

	path, err := report.NewWriter(r.cfg.ReportDir).Persist(result.Outcomes, start)
	if err != nil {
		r.sink.Log(fmt.Sprintf("❌ Erro ao salvar relatório: %v", err))
		r.sink.Status("Erro ao salvar relatório", events.CategoryError)
		result.Duration = r.now().Sub(start)
		return result, err
	}
	result.ReportPath = path
	r.sink.Log(fmt.Sprintf("📝 Log salvo em: %s", path))

	if r.archiver != nil {
		key, err := r.archiver.UploadFile(ctx, path)
		if err != nil {
			// Archiving is best-effort: the local file is the source of truth
			r.sink.Log(fmt.Sprintf("⚠️ Falha ao arquivar relatório no S3: %v", err))
		} else {
			r.sink.Log(fmt.Sprintf("📝 Relatório arquivado no S3: %s", key))
		}
	}

	result.Tally()
	result.Duration = r.now().Sub(start)

	r.sink.Progress(100)
	r.sink.Log("\n" + strings.Repeat("=", 50))
	r.sink.Log("📋 Resumo da execução:")
	r.sink.Log(fmt.Sprintf("✅ Sucessos: %d", result.SuccessCount))
	r.sink.Log(fmt.Sprintf("⚠️ Pulados: %d", result.SkippedCount))
	r.sink.Log(fmt.Sprintf("❌ Erros: %d", result.ErrorCount))
	r.sink.Log("🤖 Robô finalizado com sucesso!")

	switch result.Status() {
	case types.RunSuccess:
		r.sink.Status("Concluído com sucesso", events.CategorySuccess)
	case types.RunPartial:
		r.sink.Status(fmt.Sprintf("Concluído com %d erros", result.ErrorCount), events.CategoryWarning)
	default:
		r.sink.Status("Concluído com erros", events.CategoryError)
	}

	return result, nil
}
