package pydocs

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"pydocparser/lib/htmlutil"
)

var pdfA4Pattern = regexp.MustCompile(`.+pdf-a4\.zip$`)

// Download saves the A4 pdf documentation archive into the downloads
// directory, replacing any previous copy. It produces no rows.
func (p *Parser) Download(ctx context.Context) ([]Row, error) {
	downloadsUrl, err := htmlutil.Resolve(p.opts.MainDocUrl, "download.html")
	if err != nil {
		return nil, err
	}
	doc := p.session.Fetch(ctx, downloadsUrl)
	if doc == nil {
		return nil, nil
	}

	table, err := p.session.Locate(doc.Selection, htmlutil.Tag("table").Attr("class", "docutils"))
	if err != nil {
		return nil, err
	}
	pdfA4Tag, err := p.session.Locate(table, htmlutil.Tag("a").AttrPattern("href", pdfA4Pattern))
	if err != nil {
		return nil, err
	}
	fileUrl, err := htmlutil.Resolve(downloadsUrl, pdfA4Tag.AttrOr("href", ""))
	if err != nil {
		return nil, err
	}

	filePath, err := p.saveArchive(ctx, fileUrl)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "archive downloaded and saved", "path", filePath)
	return nil, nil
}

func archiveName(fileUrl string) (string, error) {
	parsed, err := url.Parse(fileUrl)
	if err != nil {
		return "", err
	}
	name := path.Base(parsed.Path)
	if name == "/" || name == "." {
		return "", fmt.Errorf("no file name in %s", fileUrl)
	}
	return name, nil
}

func (p *Parser) saveArchive(ctx context.Context, fileUrl string) (filePath string, err error) {
	filename, err := archiveName(fileUrl)
	if err != nil {
		return "", err
	}
	err = os.MkdirAll(p.opts.DownloadsDir, 0777)
	if err != nil {
		return "", err
	}
	filePath = filepath.Join(p.opts.DownloadsDir, filename)

	contents, err := p.session.Download(ctx, fileUrl)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", fileUrl, err)
	}

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

	_, err = f.Write(contents)
	if err != nil {
		return "", err
	}
	return filePath, nil
}
