package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lcouto/saprobot/internal/config"
	"github.com/lcouto/saprobot/pkg/types"
)

// TB is the interface shared by testing.T and testing.B
type TB interface {
	TempDir() string
	Cleanup(func())
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Helper()
}

// NewTestConfig returns a test configuration with temporary directories
// and test-friendly (near-zero) delays
func NewTestConfig(t TB) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()

	return &config.Config{
		InputFile:       filepath.Join(tmpDir, "alterar_pedidos.csv"),
		ReportDir:       filepath.Join(tmpDir, "relatorios"),
		LogDir:          filepath.Join(tmpDir, "logs"),
		MaxAttempts:     2,
		LocateAttempts:  5,
		LocateInterval:  time.Millisecond,
		RetryDelay:      time.Millisecond,
		BlockingPhrases: config.DefaultBlockingPhrases,
		Verbose:         true,
		WatchDebounce:   10 * time.Millisecond,
	}
}

// NewTestRecords returns a small input batch
func NewTestRecords() []types.InputRecord {
	return []types.InputRecord{
		{Order: "4500012345", Line: 10, NewDate: "2024-03-15"},
		{Order: "4500012346", Line: 20, NewDate: "16/03/2024"},
		{Order: "4500012347", Line: 30, NewDate: "17.03.2024"},
	}
}

// WriteInputFile writes a semicolon-separated input file to the given path
func WriteInputFile(path string, records []types.InputRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := f.WriteString("Pedido;Linha;NovaData\n"); err != nil {
		_ = f.Close()
		return err
	}
	for _, r := range records {
		line := r.Order + ";" + strconv.Itoa(r.Line) + ";" + r.NewDate + "\n"
		if _, err := f.WriteString(line); err != nil {
			_ = f.Close()
			return err
		}
	}
	return f.Close()
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertEqual fails the test if want != got
func AssertEqual[T comparable](t TB, want, got T) {
	t.Helper()
	if want != got {
		t.Errorf("got %v, want %v", got, want)
	}
}
