package resultlog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// Separator is the field separator of result logs.
const Separator = ';'

// Sink persists result rows. Write is called once per row in trial order.
type Sink interface {
	Write(ctx context.Context, row Row) error
	Close() error
}

// CSVSink appends rows to a ';'-separated log. The header is written
// before the first row unless the log already has content.
type CSVSink struct {
	w       *csv.Writer
	closer  io.Closer
	started bool
}

// NewCSVSink writes a new log to w, starting with the header.
func NewCSVSink(w io.Writer) *CSVSink {
	cw := csv.NewWriter(w)
	cw.Comma = Separator
	return &CSVSink{w: cw}
}

// OpenCSV opens the log at path for appending, creating it when missing.
// The header is only written to an empty file.
func OpenCSV(path string) (*CSVSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open result log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat result log: %w", err)
	}
	s := NewCSVSink(f)
	s.closer = f
	s.started = info.Size() > 0
	return s, nil
}

// Write appends one row and flushes it, so a crashed sweep keeps every
// completed row.
func (s *CSVSink) Write(_ context.Context, row Row) error {
	if !s.started {
		if err := s.w.Write(Columns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		s.started = true
	}
	if err := s.w.Write(row.Values()); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("flush row: %w", err)
	}
	return nil
}

// Close flushes pending output and closes the underlying file, if any.
func (s *CSVSink) Close() error {
	s.w.Flush()
	err := s.w.Error()
	if s.closer != nil {
		err = errors.Join(err, s.closer.Close())
	}
	return err
}

// ReadCSV parses a result log. The header line is required and must list
// the columns in order.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = Separator
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err == io.EOF {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range Columns {
		if header[i] != col {
			return nil, fmt.Errorf("header column %d is %q, want %q", i+1, header[i], col)
		}
	}

	rows := []Row{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		row, err := ParseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
}

// ReadCSVFile parses the result log at path.
func ReadCSVFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open result log: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// MultiSink writes every row to each sink in order and stops at the first
// failure.
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, row Row) error {
	for _, s := range m {
		if err := s.Write(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// MemorySink keeps rows in memory.
type MemorySink struct {
	Rows   []Row
	Closed bool
}

func (m *MemorySink) Write(_ context.Context, row Row) error {
	m.Rows = append(m.Rows, row)
	return nil
}

func (m *MemorySink) Close() error {
	m.Closed = true
	return nil
}
