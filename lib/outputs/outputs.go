// Package outputs renders result rows to the terminal or to a csv file.
package outputs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pydocparser/lib/scrapers/pydocs"

	"github.com/jedib0t/go-pretty/v6/table"
)

type Format string

const (
	Plain  Format = ""
	Pretty Format = "pretty"
	Page   Format = "page"
	File   Format = "file"
)

var Formats = []Format{Pretty, Page, File}

func ParseFormat(value string) (Format, error) {
	if value == "" {
		return Plain, nil
	}
	for _, f := range Formats {
		if string(f) == value {
			return f, nil
		}
	}
	return Plain, fmt.Errorf("unknown output format %q", value)
}

const timestampLayout = "2006-01-02_15-04-05"

type Options struct {
	Format Format
	// Mode names the result file.
	Mode      string
	HasHeader bool
	// ResultsDir receives csv files, it is created when missing.
	ResultsDir string
	PageSize   int
	Stdout     io.Writer
	Now        func() time.Time
}

// Write renders `rows` and returns the path of the written file for the
// File format. Nothing is rendered when there are no rows.
func Write(rows []pydocs.Row, opts Options) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	switch opts.Format {
	case Plain:
		for _, row := range rows {
			_, err := fmt.Fprintln(stdout, strings.Join(row, " "))
			if err != nil {
				return "", err
			}
		}
		return "", nil
	case Pretty:
		NewTable(stdout, rows, opts.HasHeader).Render()
		return "", nil
	case Page:
		t := NewTable(stdout, rows, opts.HasHeader)
		if opts.PageSize > 0 {
			t.SetPageSize(opts.PageSize)
		}
		t.Render()
		return "", nil
	case File:
		return writeFile(rows, opts)
	}
	return "", fmt.Errorf("unknown output format %q", opts.Format)
}

// NewTable builds a rounded table mirrored to `w`, the first row becomes the
// table header when `hasHeader` is set.
func NewTable(w io.Writer, rows []pydocs.Row, hasHeader bool) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)

	if hasHeader && len(rows) > 0 {
		t.AppendHeader(tableRow(rows[0]))
		rows = rows[1:]
	}
	for _, row := range rows {
		t.AppendRow(tableRow(row))
	}
	return t
}

func tableRow(row pydocs.Row) table.Row {
	out := make(table.Row, len(row))
	for i, cell := range row {
		out[i] = cell
	}
	return out
}

func ResultFileName(mode string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", mode, now.Format(timestampLayout))
}

func writeFile(rows []pydocs.Row, opts Options) (filePath string, err error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	err = os.MkdirAll(opts.ResultsDir, 0777)
	if err != nil {
		return "", err
	}
	filePath = filepath.Join(opts.ResultsDir, ResultFileName(opts.Mode, now()))

	f, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer func() {
		closeErr := f.Close()
		if err == nil {
			err = closeErr
		}
	}()

	NewTable(f, rows, opts.HasHeader).RenderCSV()

	slog.Info("results saved", "path", filePath)
	return filePath, nil
}
