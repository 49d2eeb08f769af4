// Package report persists the per-record outcomes of a run as a
// semicolon-separated CSV artifact for downstream spreadsheets.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lcouto/saprobot/pkg/errors"
	"github.com/lcouto/saprobot/pkg/types"
)

// utf8BOM makes Excel open the file as UTF-8 instead of the legacy
// Windows codepage.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Header is the fixed column order of the result file. Never reordered:
// downstream consumers index by position.
var Header = []string{"Pedido", "Linha", "Nova Data", "Status", "Mensagem", "Data Execução"}

// Writer persists run outcomes into a destination directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer for the given destination directory
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Persist serializes the ordered outcome sequence to a timestamp-named
// CSV inside the destination directory, creating it if absent, and
// returns the file path. Files are never overwritten: each run gets its
// own timestamp.
func (w *Writer) Persist(outcomes []types.OutcomeRecord, runTime time.Time) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", errors.NewReportError("report.Persist", "failed to create report directory", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("log_alteracoes_%s.csv", runTime.Format("20060102_150405")))

	f, err := os.Create(path)
	if err != nil {
		return "", errors.NewReportError("report.Persist", "failed to create report file", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return "", errors.NewReportError("report.Persist", "failed to write BOM", err)
	}

	cw := csv.NewWriter(f)
	cw.Comma = ';'
	cw.UseCRLF = false

	if err := cw.Write(Header); err != nil {
		return "", errors.NewReportError("report.Persist", "failed to write header", err)
	}
	for _, o := range outcomes {
		row := []string{
			o.Order,
			strconv.Itoa(o.Line),
			o.NewDate,
			string(o.Status),
			o.Message,
			o.ExecutedAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(row); err != nil {
			return "", errors.NewReportError("report.Persist", "failed to write row", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", errors.NewReportError("report.Persist", "failed to flush report", err)
	}
	if err := f.Close(); err != nil {
		return "", errors.NewReportError("report.Persist", "failed to close report", err)
	}

	return path, nil
}
