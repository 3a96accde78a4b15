// Package output writes result files: typed CSV sinks with a declared header,
// one-file-per-tier partitions, and the companion error stream. Every file is
// created with its header up front, so an empty tier is an empty table, not a
// missing file.
package output

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/note-leads/internal/model"
)

// Sink writes records of type T as CSV rows. The header comes from T's csv
// tags in declaration order, embedded structs flattened.
type Sink[T any] struct {
	path string
	f    *os.File
	w    *csv.Writer
	enc  *csvutil.Encoder
	rows int
}

// Create opens path for writing, creating parent directories, and writes
// the header.
func Create[T any](path string) (*Sink[T], error) {
	f, w, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	enc := csvutil.NewEncoder(w)
	var zero T
	if err := enc.EncodeHeader(zero); err != nil {
		f.Close() //nolint:errcheck
		return nil, eris.Wrapf(err, "output: write header %s", path)
	}
	return &Sink[T]{path: path, f: f, w: w, enc: enc}, nil
}

// Write appends one record.
func (s *Sink[T]) Write(v T) error {
	if err := s.enc.Encode(v); err != nil {
		return eris.Wrapf(err, "output: write row %s", s.path)
	}
	s.rows++
	return nil
}

// Rows is the number of records written, header excluded.
func (s *Sink[T]) Rows() int { return s.rows }

// Path is the file being written.
func (s *Sink[T]) Path() string { return s.path }

// Close flushes and closes the file.
func (s *Sink[T]) Close() error {
	return closeCSV(s.path, s.f, s.w)
}

// RawSink writes untyped rows under a header known only at run time, such
// as the source columns of a recorder export plus a reason column.
type RawSink struct {
	path  string
	f     *os.File
	w     *csv.Writer
	width int
	rows  int
}

// CreateRaw opens path and writes header.
func CreateRaw(path string, header []string) (*RawSink, error) {
	f, w, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	if err := w.Write(header); err != nil {
		f.Close() //nolint:errcheck
		return nil, eris.Wrapf(err, "output: write header %s", path)
	}
	return &RawSink{path: path, f: f, w: w, width: len(header)}, nil
}

// Write appends one row, padded or truncated to the header width.
func (s *RawSink) Write(row []string) error {
	switch {
	case len(row) < s.width:
		row = append(row[:len(row):len(row)], make([]string, s.width-len(row))...)
	case len(row) > s.width:
		row = row[:s.width]
	}
	if err := s.w.Write(row); err != nil {
		return eris.Wrapf(err, "output: write row %s", s.path)
	}
	s.rows++
	return nil
}

// Rows is the number of rows written, header excluded.
func (s *RawSink) Rows() int { return s.rows }

// Path is the file being written.
func (s *RawSink) Path() string { return s.path }

// Close flushes and closes the file.
func (s *RawSink) Close() error {
	return closeCSV(s.path, s.f, s.w)
}

// CreateErrors opens the error stream companion file.
func CreateErrors(path string) (*Sink[model.ErrorEntry], error) {
	return Create[model.ErrorEntry](path)
}

func openCSV(path string) (*os.File, *csv.Writer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, eris.Wrapf(err, "output: create dir %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "output: create %s", path)
	}
	return f, csv.NewWriter(f), nil
}

func closeCSV(path string, f *os.File, w *csv.Writer) error {
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrapf(err, "output: flush %s", path)
	}
	return eris.Wrapf(f.Close(), "output: close %s", path)
}
