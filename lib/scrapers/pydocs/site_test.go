package pydocs

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"pydocparser/lib/session"
	"pydocparser/lib/testutil"
)

// fakeSite serves fixed pages keyed by path, everything else is a 404.
type fakeSite struct {
	*httptest.Server

	pages map[string][]byte

	mu   sync.Mutex
	hits int
}

func newFakeSite(t *testing.T, pages map[string]string) *fakeSite {
	site := &fakeSite{pages: map[string][]byte{}}
	for path, contents := range pages {
		site.pages[path] = []byte(contents)
	}
	site.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		site.hits++
		site.mu.Unlock()

		contents, ok := site.pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(contents)
	}))
	t.Cleanup(site.Close)
	return site
}

func (s *fakeSite) Hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits
}

func newTestParser(t *testing.T, site *fakeSite, downloadsDir string) *Parser {
	sess := session.New(testutil.SetupCache(t, 0), session.Config{TimeoutSeconds: 5})
	return NewParser(sess, Options{
		MainDocUrl:   site.URL + "/3/",
		PepUrl:       site.URL + "/peps/",
		DownloadsDir: downloadsDir,
	})
}

const whatsNewIndex = `<html><body>
<section id="what-s-new-in-python">
<h1>What's New in Python</h1>
<div class="toctree-wrapper compound">
<ul>
<li class="toctree-l1"><a class="reference internal" href="3.13.html">What's New In Python 3.13</a>
<ul><li class="toctree-l2"><a href="3.13.html#summary">Summary</a></li></ul>
</li>
<li class="toctree-l1"><a class="reference internal" href="3.12.html">What's New In Python 3.12</a></li>
<li class="toctree-l1"><a class="reference internal" href="3.11.html">What's New In Python 3.11</a></li>
<li class="toctree-l1"><a class="reference internal" href="changelog.html">Changelog</a></li>
</ul>
</div>
</section>
</body></html>`

const whatsNew313 = `<html><body><section>
<h1>What's New In Python 3.13</h1>
<dl class="field-list simple"><dt>Editors</dt>
<dd>Adam Turner and Thomas Wouters</dd></dl>
</section></body></html>`

const whatsNew312 = `<html><body><section>
<h1>What's New In Python 3.12</h1>
<dl class="field-list simple"><dt>Editor</dt>
<dd>Adam Turner</dd></dl>
</section></body></html>`

const changelog = `<html><body><section><h1>Changelog</h1><p>no field list here</p></section></body></html>`

const mainPage = `<html><body>
<div class="sphinxsidebarwrapper">
<h3>Navigation</h3>
<ul><li><a href="genindex.html">Index</a></li></ul>
<h3>Docs by version</h3>
<ul>
<li><a href="https://docs.python.org/3.14/">Python 3.14 (in development)</a></li>
<li><a href="https://docs.python.org/3.12/">Python 3.12 (stable)</a></li>
<li><a href="https://docs.python.org/2.7/">Python 2.7 (EOL)</a></li>
<li><a href="https://www.python.org/doc/versions/">All versions</a></li>
</ul>
</div>
</body></html>`

const mainPageWithoutVersions = `<html><body>
<div class="sphinxsidebarwrapper">
<ul><li><a href="genindex.html">Index</a></li></ul>
</div>
</body></html>`

const downloadPage = `<html><body>
<table class="docutils">
<tr><th>Format</th><th>Packed as .zip</th></tr>
<tr><td>PDF (US-Letter paper size)</td><td><a href="archives/python-3.12-docs-pdf-letter.zip">Download</a></td></tr>
<tr><td>PDF (A4 paper size)</td><td><a href="archives/python-3.12-docs-pdf-a4.zip">Download</a></td></tr>
</table>
</body></html>`

const pepIndex = `<html><body>
<section id="numerical-index">
<table>
<tr><th>Type</th><th>PEP</th><th>Title</th></tr>
<tr><td><abbr title="Process, Active">PA</abbr></td><td><a href="pep-0001/">1</a></td><td>PEP Purpose</td></tr>
<tr><td><abbr title="Standards Track, Final">SF</abbr></td><td><a href="pep-0008/">8</a></td><td>Style Guide</td></tr>
<tr><td><abbr title="Standards Track, Final">SF</abbr></td><td><a href="pep-0020/">20</a></td><td>Mismatch</td></tr>
<tr><td><abbr title="Standards Track, Withdrawn">SW</abbr></td><td><a href="pep-0404/">404</a></td><td>Missing page</td></tr>
<tr><td><abbr title="Informational, Final">IF</abbr></td><td><a href="pep-0257/">257</a></td><td>No status field</td></tr>
<tr><td><abbr title="Standards Track, Rejected">SR</abbr></td><td>no link</td><td>Skipped</td></tr>
<tr><td></td><td><a href="pep-9999/">9999</a></td><td>No abbreviation</td></tr>
<tr><td><abbr title="Standards Track, Unknown">SX</abbr></td><td><a href="pep-3000/">3000</a></td><td>Undeclared status</td></tr>
</table>
</section>
</body></html>`

func pepPage(status string) string {
	return `<html><body><dl class="rfc2822 field-list simple">
<dt class="field-odd">Author<span class="colon">:</span></dt>
<dd class="field-odd">Guido van Rossum</dd>
<dt class="field-even">Status<span class="colon">:</span></dt>
<dd class="field-even"><abbr title="status">` + status + `</abbr></dd>
<dt class="field-odd">Type<span class="colon">:</span></dt>
<dd class="field-odd"><abbr title="type">Process</abbr></dd>
</dl></body></html>`
}

const pepPageWithoutStatus = `<html><body><dl><dt class="field-odd">Author</dt><dd class="field-odd">Someone</dd></dl></body></html>`
