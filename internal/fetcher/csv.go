package fetcher

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune            // default ','
	Comment    rune            // comment character (0 = none)
	LazyQuotes bool
	HeaderCh   chan<- []string // optional: receives the normalized header
}

// StreamCSV reads a headed CSV file and sends header-keyed records to a channel.
// Caller must consume the returned record channel. Errors are sent on the error channel.
// Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan Record, <-chan error) {
	recCh := make(chan Record, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(recCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // ragged rows are reported against the header instead

		first, err := reader.Read()
		if err == io.EOF {
			errCh <- eris.New("csv: empty input, no header row")
			return
		}
		if err != nil {
			errCh <- eris.Wrap(err, "csv: read header")
			return
		}
		hdr, err := parseHeader(first)
		if err != nil {
			errCh <- eris.Wrap(err, "csv")
			return
		}
		if opts.HeaderCh != nil {
			select {
			case opts.HeaderCh <- hdr.Columns():
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled sending header")
				return
			}
		}

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			cells, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}
			line, _ := reader.FieldPos(0)
			if blankRow(cells) {
				continue
			}

			rec, err := hdr.record(line, cells)
			if err != nil {
				errCh <- eris.Wrap(err, "csv")
				return
			}

			select {
			case recCh <- rec:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return recCh, errCh
}

// Collect drains a record stream into a slice, returning the first error.
func Collect(recCh <-chan Record, errCh <-chan error) ([]Record, error) {
	var recs []Record
	for rec := range recCh {
		recs = append(recs, rec)
	}
	for err := range errCh {
		if err != nil {
			return recs, err
		}
	}
	return recs, nil
}
