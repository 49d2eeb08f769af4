// Package input loads the batch records from the externally supplied
// tabular file.
package input

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lcouto/saprobot/pkg/errors"
	"github.com/lcouto/saprobot/pkg/types"
)

// Required column names, matched case-insensitively against the header row.
const (
	ColOrder   = "Pedido"
	ColLine    = "Linha"
	ColNewDate = "NovaData"
)

// Load reads the input file and returns its records in file order.
// The file is CSV with a header row carrying at least the Pedido, Linha
// and NovaData columns; both semicolon and comma separators are accepted
// (sniffed from the header line). Any problem opening or parsing the file
// is a source error, which is fatal for the whole run.
func Load(path string) ([]types.InputRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewSourceError("input.Load", fmt.Sprintf("arquivo %s não encontrado", path), err)
	}
	defer f.Close()

	return Parse(f, path)
}

// Parse reads records from an already-open reader. The name is used in
// error messages only.
func Parse(r io.Reader, name string) ([]types.InputRecord, error) {
	// Strip a UTF-8 BOM if the file came out of a spreadsheet export
	br := newBOMReader(r)

	head, rest, err := peekLine(br)
	if err != nil {
		return nil, errors.NewSourceError("input.Parse", fmt.Sprintf("arquivo %s vazio ou ilegível", name), err)
	}

	cr := csv.NewReader(rest)
	cr.Comma = sniffSeparator(head)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.NewSourceError("input.Parse", "cabeçalho ausente", err)
	}

	orderIdx, lineIdx, dateIdx := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case strings.ToLower(ColOrder):
			orderIdx = i
		case strings.ToLower(ColLine):
			lineIdx = i
		case strings.ToLower(ColNewDate):
			dateIdx = i
		}
	}
	if orderIdx < 0 || lineIdx < 0 || dateIdx < 0 {
		return nil, errors.NewSourceError("input.Parse",
			fmt.Sprintf("colunas obrigatórias ausentes (esperado %s;%s;%s)", ColOrder, ColLine, ColNewDate), nil)
	}

	var records []types.InputRecord
	rowNum := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			return nil, errors.NewSourceError("input.Parse", fmt.Sprintf("linha %d inválida", rowNum), err)
		}

		order := strings.TrimSpace(row[orderIdx])
		if order == "" {
			continue // blank row
		}

		line, err := parseLineNumber(row[lineIdx])
		if err != nil {
			return nil, errors.NewSourceError("input.Parse",
				fmt.Sprintf("linha %d: valor de %s inválido: %q", rowNum, ColLine, row[lineIdx]), err)
		}

		records = append(records, types.InputRecord{
			Order:   order,
			Line:    line,
			NewDate: strings.TrimSpace(row[dateIdx]),
		})
	}

	return records, nil
}

// parseLineNumber accepts integer text and float-formatted text ("10.0",
// as spreadsheet exports produce for numeric cells). The result must be
// positive.
func parseLineNumber(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return 0, err
		}
		n = int(f)
	}
	if n <= 0 {
		return 0, fmt.Errorf("line number must be positive, got %d", n)
	}
	return n, nil
}

// sniffSeparator picks the column separator from the header line.
// Semicolon wins when present (pt-BR spreadsheet exports); comma is the
// fallback.
func sniffSeparator(header string) rune {
	if strings.Contains(header, ";") {
		return ';'
	}
	return ','
}

// newBOMReader strips a leading UTF-8 BOM
func newBOMReader(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, _ := io.ReadFull(r, buf)
	if n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf[:n])), r)
}

// peekLine returns the first line of the stream without consuming it from
// the returned reader.
func peekLine(r io.Reader) (string, io.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, io.ErrUnexpectedEOF
	}
	line := string(data)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return line, strings.NewReader(string(data)), nil
}
