package fetcher

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions configures the XLSX parser.
type XLSXOptions struct {
	SheetIndex int             // default 0
	SheetName  string          // if set, overrides SheetIndex
	HeaderCh   chan<- []string // optional: receives the normalized header
}

// StreamXLSX reads a headed sheet from an XLSX file and sends header-keyed
// records to a channel. Both channels are closed when processing completes.
func StreamXLSX(ctx context.Context, path string, opts XLSXOptions) (<-chan Record, <-chan error) {
	recCh := make(chan Record, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(recCh)
		defer close(errCh)

		f, err := xlsx.OpenFile(path)
		if err != nil {
			errCh <- eris.Wrap(err, "xlsx: open file")
			return
		}

		sheet, err := getSheet(f, opts)
		if err != nil {
			errCh <- err
			return
		}
		if len(sheet.Rows) == 0 {
			errCh <- eris.Errorf("xlsx: sheet %q is empty, no header row", sheet.Name)
			return
		}

		hdr, err := parseHeader(rowToStrings(sheet.Rows[0]))
		if err != nil {
			errCh <- eris.Wrap(err, "xlsx")
			return
		}
		if opts.HeaderCh != nil {
			select {
			case opts.HeaderCh <- hdr.Columns():
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "xlsx: context cancelled sending header")
				return
			}
		}

		for i, row := range sheet.Rows[1:] {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "xlsx: context cancelled")
				return
			}

			cells := rowToStrings(row)
			if blankRow(cells) {
				continue
			}
			// Trailing empty cells are either dropped or padded by the writer.
			for len(cells) < len(hdr) {
				cells = append(cells, "")
			}
			for len(cells) > len(hdr) && cells[len(cells)-1] == "" {
				cells = cells[:len(cells)-1]
			}

			rec, err := hdr.record(i+2, cells)
			if err != nil {
				errCh <- eris.Wrap(err, "xlsx")
				return
			}

			select {
			case recCh <- rec:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "xlsx: context cancelled")
				return
			}
		}
	}()

	return recCh, errCh
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
