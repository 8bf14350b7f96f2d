package pydocs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"pydocparser/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	pkgerrors "github.com/pkg/errors"
)

var errStatusMismatch = errors.New("status on the index does not match the pep page")

// PEP counts the PEPs of the numerical index per status and returns
// (status, count) rows in StatusCodes order.
func (p *Parser) PEP(ctx context.Context) ([]Row, error) {
	tally := NewStatusTally()
	err := p.CountStatuses(ctx, tally)
	if errors.Is(err, errPageUnavailable) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tally.Rows(), nil
}

// CountStatuses adds every PEP of the numerical index to `tally`. The status
// shown on the index is checked against the PEP's own page, PEPs that cannot
// be checked or disagree are counted as unknown.
func (p *Parser) CountStatuses(ctx context.Context, tally *StatusTally) error {
	doc := p.session.Fetch(ctx, p.opts.PepUrl)
	if doc == nil {
		return errPageUnavailable
	}
	index, err := p.session.Locate(doc.Selection, htmlutil.Tag("section").Attr("id", "numerical-index"))
	if err != nil {
		return err
	}

	var eligible []*goquery.Selection
	rows := htmlutil.FindAll(index, htmlutil.Tag("tr"))
	for i := range rows.Nodes {
		row := rows.Eq(i)
		if row.Find("abbr").Length() == 0 || row.Find("a").Length() == 0 {
			continue
		}
		eligible = append(eligible, row)
	}

	tracker := p.progress.Track("pep", len(eligible))
	defer tracker.Done()

	for _, row := range eligible {
		status, err := p.confirmStatus(ctx, row)
		tracker.Increment()
		if errors.Is(err, errStatusMismatch) {
			tally.AddUnknown()
			slog.WarnContext(ctx, "pep status mismatch", "err", err)
			continue
		}
		if err != nil {
			tally.AddUnknown()
			slog.ErrorContext(ctx, "failed to check pep status", "err", err, "stack", fmt.Sprintf("%+v", err))
			continue
		}
		if !tally.Add(status) {
			slog.WarnContext(ctx, "unrecognized pep status", "status", status)
		}
	}

	return nil
}

// confirmStatus returns the status letter of the PEP in `row` when the index
// and the PEP page agree on it.
func (p *Parser) confirmStatus(ctx context.Context, row *goquery.Selection) (string, error) {
	// the preview packs type and status, like "SF", the status comes last
	preview := htmlutil.CleanText(row.Find("abbr").First().Text())
	previewStatus, _ := utf8.DecodeLastRuneInString(preview)
	if previewStatus == utf8.RuneError {
		return "", pkgerrors.New("empty status on the index")
	}

	link, err := htmlutil.Resolve(p.opts.PepUrl, row.Find("a").First().AttrOr("href", ""))
	if err != nil {
		return "", pkgerrors.WithStack(err)
	}
	doc := p.session.Fetch(ctx, link)
	if doc == nil {
		return "", pkgerrors.Errorf("%s: page unavailable", link)
	}
	field, err := p.session.Locate(doc.Selection, htmlutil.Tag("dd").Attr("class", "field-even"))
	if err != nil {
		return "", pkgerrors.Wrap(err, link)
	}
	abbr, err := p.session.Locate(field, htmlutil.Tag("abbr"))
	if err != nil {
		return "", pkgerrors.Wrap(err, link)
	}
	detail := htmlutil.CleanText(abbr.Text())
	detailStatus, _ := utf8.DecodeRuneInString(detail)
	if detailStatus == utf8.RuneError {
		return "", pkgerrors.Errorf("%s: empty status", link)
	}

	if previewStatus != detailStatus {
		return "", fmt.Errorf("%s: %w: %q != %q", link, errStatusMismatch, preview, detail)
	}
	return string(detailStatus), nil
}
