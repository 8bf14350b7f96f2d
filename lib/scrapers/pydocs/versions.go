package pydocs

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"pydocparser/lib/htmlutil"
)

var LatestVersionsHeader = Row{"Documentation link", "Version", "Status"}

// ErrVersionListNotFound means the sidebar no longer holds the list of all
// documentation versions.
var ErrVersionListNotFound = errors.New("could not find the list of all versions in the sidebar")

const allVersionsMarker = "All versions"

var versionPattern = regexp.MustCompile(`Python (?P<version>\d\.\d+) \((?P<status>.*)\)`)

type VersionInfo struct {
	Version string
	Status  string
}

// ParseVersion extracts the version and status out of link text like
// "Python 3.12 (stable)".
func ParseVersion(text string) (VersionInfo, bool) {
	groups := versionPattern.FindStringSubmatch(text)
	if groups == nil {
		return VersionInfo{}, false
	}
	return VersionInfo{
		Version: groups[versionPattern.SubexpIndex("version")],
		Status:  groups[versionPattern.SubexpIndex("status")],
	}, true
}

// LatestVersions returns one row per documentation version listed in the
// sidebar: (link, version, status). Links whose text does not name a
// version are kept with the link standing in for the version.
func (p *Parser) LatestVersions(ctx context.Context) ([]Row, error) {
	doc := p.session.Fetch(ctx, p.opts.MainDocUrl)
	if doc == nil {
		return nil, nil
	}

	sidebar, err := p.session.Locate(doc.Selection, htmlutil.Tag("div").Attr("class", "sphinxsidebarwrapper"))
	if err != nil {
		return nil, err
	}

	lists := htmlutil.FindAll(sidebar, htmlutil.Tag("ul"))
	found := false
	var anchors []htmlutil.Anchor
	for i := range lists.Nodes {
		list := lists.Eq(i)
		if !strings.Contains(list.Text(), allVersionsMarker) {
			continue
		}
		anchors = htmlutil.GetAnchors(ctx, htmlutil.FindAll(list, htmlutil.Tag("a")))
		found = true
		break
	}
	if !found {
		return nil, ErrVersionListNotFound
	}

	result := []Row{LatestVersionsHeader}
	for _, a := range anchors {
		info, ok := ParseVersion(a.Name)
		if !ok {
			result = append(result, Row{a.Href, a.Href, ""})
			continue
		}
		result = append(result, Row{a.Href, info.Version, info.Status})
	}

	return result, nil
}
