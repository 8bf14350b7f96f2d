package pydocs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pydocparser/lib/htmlutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestUnavailableRootPage(t *testing.T) {
	site := newFakeSite(t, nil)
	parser := newTestParser(t, site, filepath.Join(t.TempDir(), "downloads"))

	for _, mode := range Modes {
		rows, err := mode.Run(parser, context.Background())
		require.NoError(t, err, mode.Name)
		require.Nil(t, rows, mode.Name)
	}
}

func TestWhatsNew(t *testing.T) {
	site := newFakeSite(t, map[string]string{
		"/3/whatsnew/":               whatsNewIndex,
		"/3/whatsnew/3.13.html":      whatsNew313,
		"/3/whatsnew/3.12.html":      whatsNew312,
		"/3/whatsnew/changelog.html": changelog,
	})
	parser := newTestParser(t, site, t.TempDir())

	rows, err := parser.WhatsNew(context.Background())
	require.NoError(t, err)

	expect := []Row{
		WhatsNewHeader,
		{site.URL + "/3/whatsnew/3.13.html", "What's New In Python 3.13", "Editors Adam Turner and Thomas Wouters"},
		{site.URL + "/3/whatsnew/3.12.html", "What's New In Python 3.12", "Editor Adam Turner"},
	}
	diff := cmp.Diff(expect, rows)
	require.Empty(t, diff)

	// a second run is served from the cache and gives the same rows
	hits := site.Hits()
	again, err := parser.WhatsNew(context.Background())
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(rows, again))
	// only the missing 3.11 page is requested again
	require.Equal(t, hits+1, site.Hits())
}

func TestWhatsNewMissingSection(t *testing.T) {
	site := newFakeSite(t, map[string]string{
		"/3/whatsnew/": `<html><body><section id="changelog"></section></body></html>`,
	})
	parser := newTestParser(t, site, t.TempDir())

	_, err := parser.WhatsNew(context.Background())
	var parsingErr *htmlutil.ParsingError
	require.True(t, errors.As(err, &parsingErr))
	require.Equal(t, "section", parsingErr.Query.Tag)
}

func TestParseVersion(t *testing.T) {
	testCases := []struct {
		text   string
		expect VersionInfo
		ok     bool
	}{
		{text: "Python 3.12 (stable)", expect: VersionInfo{Version: "3.12", Status: "stable"}, ok: true},
		{text: "Python 3.14 (in development)", expect: VersionInfo{Version: "3.14", Status: "in development"}, ok: true},
		{text: "Python 2.7 (EOL)", expect: VersionInfo{Version: "2.7", Status: "EOL"}, ok: true},
		{text: "All versions", ok: false},
		{text: "Python 3.12", ok: false},
	}

	for _, test := range testCases {
		info, ok := ParseVersion(test.text)
		require.Equal(t, test.ok, ok, test.text)
		require.Equal(t, test.expect, info, test.text)
	}
}

func TestLatestVersions(t *testing.T) {
	site := newFakeSite(t, map[string]string{
		"/3/": mainPage,
	})
	parser := newTestParser(t, site, t.TempDir())

	rows, err := parser.LatestVersions(context.Background())
	require.NoError(t, err)

	expect := []Row{
		LatestVersionsHeader,
		{"https://docs.python.org/3.14/", "3.14", "in development"},
		{"https://docs.python.org/3.12/", "3.12", "stable"},
		{"https://docs.python.org/2.7/", "2.7", "EOL"},
		{"https://www.python.org/doc/versions/", "https://www.python.org/doc/versions/", ""},
	}
	require.Empty(t, cmp.Diff(expect, rows))
}

func TestLatestVersionsUnparsableHref(t *testing.T) {
	site := newFakeSite(t, map[string]string{
		"/3/": `<html><body><div class="sphinxsidebarwrapper"><ul>
<li><a href="http://[::1/bad">Python 3.12 (stable)</a></li>
<li><a href="https://www.python.org/doc/versions/">All versions</a></li>
</ul></div></body></html>`,
	})
	parser := newTestParser(t, site, t.TempDir())

	rows, err := parser.LatestVersions(context.Background())
	require.NoError(t, err)

	expect := []Row{
		LatestVersionsHeader,
		{"http://[::1/bad", "3.12", "stable"},
		{"https://www.python.org/doc/versions/", "https://www.python.org/doc/versions/", ""},
	}
	require.Empty(t, cmp.Diff(expect, rows))
}

func TestLatestVersionsListNotFound(t *testing.T) {
	site := newFakeSite(t, map[string]string{
		"/3/": mainPageWithoutVersions,
	})
	parser := newTestParser(t, site, t.TempDir())

	rows, err := parser.LatestVersions(context.Background())
	require.ErrorIs(t, err, ErrVersionListNotFound)
	require.Nil(t, rows)
}

func TestStatusTally(t *testing.T) {
	tally := NewStatusTally()
	require.True(t, tally.Add("A"))
	require.True(t, tally.Add("A"))
	require.True(t, tally.Add("F"))
	require.False(t, tally.Add("X"))
	tally.AddUnknown()

	require.Equal(t, 2, tally.Count("A"))
	require.Equal(t, 1, tally.Count("F"))
	require.Equal(t, 0, tally.Count("X"))
	require.Equal(t, 2, tally.Count(UnknownStatus))
	require.Equal(t, 5, tally.Total())

	rows := tally.Rows()
	require.Len(t, rows, len(StatusCodes))
	for i, row := range rows {
		require.Equal(t, StatusCodes[i], row[0])
	}
	require.Equal(t, Row{"A", "2"}, rows[0])
	require.Equal(t, Row{UnknownStatus, "2"}, rows[len(rows)-1])
}

func TestPEP(t *testing.T) {
	site := newFakeSite(t, map[string]string{
		"/peps/":          pepIndex,
		"/peps/pep-0001/": pepPage("Active"),
		"/peps/pep-0008/": pepPage("Final"),
		"/peps/pep-0020/": pepPage("Draft"),
		"/peps/pep-0257/": pepPageWithoutStatus,
		"/peps/pep-3000/": pepPage("Xylophone"),
	})
	parser := newTestParser(t, site, t.TempDir())

	tally := NewStatusTally()
	err := parser.CountStatuses(context.Background(), tally)
	require.NoError(t, err)

	// six rows have both an abbreviation and a link
	require.Equal(t, 6, tally.Total())
	require.Equal(t, 1, tally.Count("A"))
	require.Equal(t, 1, tally.Count("F"))
	require.Equal(t, 4, tally.Count(UnknownStatus))

	rows, err := parser.PEP(context.Background())
	require.NoError(t, err)
	expect := []Row{
		{"A", "1"},
		{"D", "0"},
		{"F", "1"},
		{"P", "0"},
		{"R", "0"},
		{"S", "0"},
		{"W", "0"},
		{UnknownStatus, "4"},
	}
	require.Empty(t, cmp.Diff(expect, rows))
}

func TestPEPMissingIndex(t *testing.T) {
	site := newFakeSite(t, map[string]string{
		"/peps/": `<html><body><section id="introduction"></section></body></html>`,
	})
	parser := newTestParser(t, site, t.TempDir())

	rows, err := parser.PEP(context.Background())
	require.Error(t, err)
	require.Nil(t, rows)
}

func TestDownload(t *testing.T) {
	archive := "PK\x03\x04 pretend this is a zip archive"
	site := newFakeSite(t, map[string]string{
		"/3/download.html": downloadPage,
		"/3/archives/python-3.12-docs-pdf-a4.zip": archive,
	})
	downloads := filepath.Join(t.TempDir(), "nested", "downloads")
	parser := newTestParser(t, site, downloads)

	rows, err := parser.Download(context.Background())
	require.NoError(t, err)
	require.Nil(t, rows)

	saved := filepath.Join(downloads, "python-3.12-docs-pdf-a4.zip")
	contents, err := os.ReadFile(saved)
	require.NoError(t, err)
	require.Equal(t, archive, string(contents))

	// an existing, longer file is replaced rather than appended to
	err = os.WriteFile(saved, []byte(archive+archive+archive), 0666)
	require.NoError(t, err)
	_, err = parser.Download(context.Background())
	require.NoError(t, err)

	contents, err = os.ReadFile(saved)
	require.NoError(t, err)
	require.Equal(t, archive, string(contents))

	entries, err := os.ReadDir(downloads)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestDownloadArchiveUnavailable(t *testing.T) {
	site := newFakeSite(t, map[string]string{
		"/3/download.html": downloadPage,
	})
	parser := newTestParser(t, site, t.TempDir())

	_, err := parser.Download(context.Background())
	require.Error(t, err)
}

func TestArchiveName(t *testing.T) {
	name, err := archiveName("https://docs.python.org/3/archives/python-3.12-docs-pdf-a4.zip?x=1")
	require.NoError(t, err)
	require.Equal(t, "python-3.12-docs-pdf-a4.zip", name)

	_, err = archiveName("https://docs.python.org/")
	require.Error(t, err)
}

func TestLookupMode(t *testing.T) {
	require.Equal(t, []string{"whats-new", "latest-versions", "download", "pep"}, ModeNames())

	mode, ok := LookupMode("pep")
	require.True(t, ok)
	require.False(t, mode.HasHeader)

	_, ok = LookupMode("unknown")
	require.False(t, ok)
}
