package outputs

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pydocparser/lib/scrapers/pydocs"

	"github.com/stretchr/testify/require"
)

var versionRows = []pydocs.Row{
	pydocs.LatestVersionsHeader,
	{"https://docs.python.org/3.14/", "3.14", "in development"},
	{"https://docs.python.org/3.12/", "3.12", "stable"},
	{"https://docs.python.org/2.7/", "2.7", "EOL"},
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		value  string
		expect Format
		fails  bool
	}{
		{value: "", expect: Plain},
		{value: "pretty", expect: Pretty},
		{value: "page", expect: Page},
		{value: "file", expect: File},
		{value: "xml", fails: true},
	}

	for _, test := range testCases {
		format, err := ParseFormat(test.value)
		if test.fails {
			require.Error(t, err, test.value)
			continue
		}
		require.NoError(t, err, test.value)
		require.Equal(t, test.expect, format)
	}
}

func TestWritePlain(t *testing.T) {
	var out bytes.Buffer
	path, err := Write([]pydocs.Row{{"A", "1"}, {"", "4"}}, Options{Stdout: &out})
	require.NoError(t, err)
	require.Empty(t, path)
	require.Equal(t, "A 1\n 4\n", out.String())
}

func TestWriteNothing(t *testing.T) {
	var out bytes.Buffer
	path, err := Write(nil, Options{Format: File, ResultsDir: t.TempDir(), Stdout: &out})
	require.NoError(t, err)
	require.Empty(t, path)
	require.Empty(t, out.String())
}

func TestWritePretty(t *testing.T) {
	var out bytes.Buffer
	_, err := Write(versionRows, Options{Format: Pretty, HasHeader: true, Stdout: &out})
	require.NoError(t, err)

	rendered := out.String()
	require.Contains(t, rendered, "╭")
	require.Contains(t, rendered, "https://docs.python.org/3.12/")
	require.Contains(t, rendered, "in development")
	require.Equal(t, 1, strings.Count(strings.ToLower(rendered), "documentation link"))
}

func TestWritePage(t *testing.T) {
	var out bytes.Buffer
	_, err := Write(versionRows, Options{Format: Page, HasHeader: true, PageSize: 1, Stdout: &out})
	require.NoError(t, err)

	// the header is repeated on every page
	rendered := strings.ToLower(out.String())
	require.Greater(t, strings.Count(rendered, "documentation link"), 1)
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	now := time.Date(2024, 6, 1, 13, 4, 5, 0, time.UTC)

	path, err := Write(versionRows, Options{
		Format:     File,
		Mode:       "latest-versions",
		HasHeader:  true,
		ResultsDir: dir,
		Now:        func() time.Time { return now },
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "latest-versions_2024-06-01_13-04-05.csv"), path)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	require.Len(t, lines, len(versionRows))
	require.Equal(t, "documentation link,version,status", strings.ToLower(lines[0]))
	require.Equal(t, "https://docs.python.org/3.12/,3.12,stable", lines[2])
}
