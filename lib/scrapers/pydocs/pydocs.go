// Package pydocs extracts release notes, version lists, PEP statuses and the
// documentation archive from docs.python.org and peps.python.org.
//
// Every routine follows the same shape: fetch a root page, locate the part
// of it that holds the data, then walk that part (possibly fetching one
// sub-page per item) into rows. A root page that cannot be fetched yields no
// rows and no error, a root page with an unexpected structure is an error,
// and a single broken sub-page is logged and skipped.
package pydocs

import (
	"context"
	"errors"

	"pydocparser/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	MainDocUrl = "https://docs.python.org/3/"
	PepUrl     = "https://peps.python.org/"
)

// errPageUnavailable is returned internally when a root page could not be
// fetched, routines turn it into an empty result.
var errPageUnavailable = errors.New("page unavailable")

// Session is the set of capabilities the routines need from an http session.
type Session interface {
	// Fetch returns the parsed page or nil when it could not be fetched.
	Fetch(ctx context.Context, link string) *goquery.Document
	Locate(sel *goquery.Selection, query htmlutil.Query) (*goquery.Selection, error)
	// Download returns the raw bytes of `link`, bypassing any cache.
	Download(ctx context.Context, link string) ([]byte, error)
}

type Row []string

// Tracker follows the progress of one loop over sub-pages.
type Tracker interface {
	Increment()
	Done()
}

type Progress interface {
	Track(message string, total int) Tracker
}

type noopProgress struct{}

func (noopProgress) Track(string, int) Tracker { return noopTracker{} }

type noopTracker struct{}

func (noopTracker) Increment() {}
func (noopTracker) Done()      {}

type Options struct {
	MainDocUrl string
	PepUrl     string
	// DownloadsDir is where Download stores the archive.
	DownloadsDir string
	// Progress may be nil.
	Progress Progress
}

type Parser struct {
	session  Session
	opts     Options
	progress Progress
}

func NewParser(session Session, opts Options) *Parser {
	if opts.MainDocUrl == "" {
		opts.MainDocUrl = MainDocUrl
	}
	if opts.PepUrl == "" {
		opts.PepUrl = PepUrl
	}
	if opts.DownloadsDir == "" {
		opts.DownloadsDir = "downloads"
	}
	progress := opts.Progress
	if progress == nil {
		progress = noopProgress{}
	}
	return &Parser{
		session:  session,
		opts:     opts,
		progress: progress,
	}
}
