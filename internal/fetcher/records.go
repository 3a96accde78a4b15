package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// DecodeCSV reads a headed CSV file into records of type T and calls fn for
// each one. Columns T does not declare are ignored and declared columns the
// header lacks stay empty. Short rows are padded and long rows truncated to
// the header width. It returns the header.
func DecodeCSV[T any](ctx context.Context, r io.Reader, opts CSVOptions, fn func(row int, rec T) error) ([]string, error) {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.LazyQuotes = opts.LazyQuotes
	cr.FieldsPerRecord = -1

	dec, err := csvutil.NewDecoder(&fixedWidthReader{r: cr, trim: opts.TrimSpace})
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}
	header := dec.Header()

	for row := 1; ; row++ {
		if ctx.Err() != nil {
			return header, eris.Wrap(ctx.Err(), "csv: context cancelled")
		}
		var rec T
		if err := dec.Decode(&rec); err == io.EOF {
			return header, nil
		} else if err != nil {
			return header, eris.Wrapf(err, "csv: decode row %d", row)
		}
		if err := fn(row, rec); err != nil {
			return header, err
		}
	}
}

// fixedWidthReader makes every record as wide as the first one.
type fixedWidthReader struct {
	r     *csv.Reader
	width int
	trim  bool
}

func (f *fixedWidthReader) Read() ([]string, error) {
	rec, err := f.r.Read()
	if err != nil {
		return nil, err
	}
	if f.width == 0 {
		f.width = len(rec)
	}
	switch {
	case len(rec) < f.width:
		rec = append(rec, make([]string, f.width-len(rec))...)
	case len(rec) > f.width:
		rec = rec[:f.width]
	}
	if f.trim {
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
	}
	return rec, nil
}
