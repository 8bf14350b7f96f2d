package pydocs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pydocparser/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

var WhatsNewHeader = Row{"Article link", "Title", "Editor, author"}

// WhatsNew returns one row per release notes page linked from the what's new
// index: (link, title, editor and author).
func (p *Parser) WhatsNew(ctx context.Context) ([]Row, error) {
	whatsNewUrl, err := htmlutil.Resolve(p.opts.MainDocUrl, "whatsnew/")
	if err != nil {
		return nil, err
	}
	doc := p.session.Fetch(ctx, whatsNewUrl)
	if doc == nil {
		return nil, nil
	}

	mainSection, err := p.session.Locate(doc.Selection, htmlutil.Tag("section").Attr("id", "what-s-new-in-python"))
	if err != nil {
		return nil, err
	}
	wrapper, err := p.session.Locate(mainSection, htmlutil.Tag("div").Attr("class", "toctree-wrapper"))
	if err != nil {
		return nil, err
	}
	items := htmlutil.FindAll(wrapper, htmlutil.Tag("li").Attr("class", "toctree-l1"))

	result := []Row{WhatsNewHeader}
	tracker := p.progress.Track("what's new", items.Length())
	defer tracker.Done()

	for i := range items.Nodes {
		row, err := p.whatsNewRow(ctx, whatsNewUrl, items.Eq(i))
		tracker.Increment()
		if errors.Is(err, errPageUnavailable) {
			continue
		}
		if err != nil {
			slog.WarnContext(ctx, "skipping what's new entry", "index", i, "err", err)
			continue
		}
		result = append(result, row)
	}

	return result, nil
}

func (p *Parser) whatsNewRow(ctx context.Context, whatsNewUrl string, item *goquery.Selection) (Row, error) {
	anchor, err := p.session.Locate(item, htmlutil.Tag("a"))
	if err != nil {
		return nil, err
	}
	versionLink, err := htmlutil.Resolve(whatsNewUrl, anchor.AttrOr("href", ""))
	if err != nil {
		return nil, err
	}

	doc := p.session.Fetch(ctx, versionLink)
	if doc == nil {
		return nil, errPageUnavailable
	}
	h1, err := p.session.Locate(doc.Selection, htmlutil.Tag("h1"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", versionLink, err)
	}
	dl, err := p.session.Locate(doc.Selection, htmlutil.Tag("dl"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", versionLink, err)
	}

	dlText := strings.ReplaceAll(dl.Text(), "\n", " ")
	return Row{versionLink, h1.Text(), dlText}, nil
}
