package fetcher

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// Line is one physical line of a text file. Number is 1-based and counts
// every line, including blank ones.
type Line struct {
	Number int
	Text   string
}

// StreamLines reads r line by line without a length limit and sends each
// line, trailing CR/LF removed, to a channel. Both channels are closed when
// processing completes.
func StreamLines(ctx context.Context, r io.Reader) (<-chan Line, <-chan error) {
	lineCh := make(chan Line, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(lineCh)
		defer close(errCh)

		br := bufio.NewReaderSize(r, 64*1024)
		n := 0
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "lines: context cancelled")
				return
			}

			text, err := br.ReadString('\n')
			if err != nil && err != io.EOF {
				errCh <- eris.Wrap(err, "lines: read")
				return
			}
			if text == "" && err == io.EOF {
				return
			}

			n++
			select {
			case lineCh <- Line{Number: n, Text: strings.TrimRight(text, "\r\n")}:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "lines: context cancelled")
				return
			}

			if err == io.EOF {
				return
			}
		}
	}()

	return lineCh, errCh
}
