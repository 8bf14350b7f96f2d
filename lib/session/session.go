// Package session fetches pages through a persistent response cache.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pydocparser/lib/htmlutil"
	"pydocparser/lib/httpcache"
	"pydocparser/lib/restyutil"
	"pydocparser/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("pydocparser.lib.session")
var meter = otel.Meter("pydocparser.lib.session")
var cacheHits, _ = meter.Int64Counter("pydocparser.cache.hits")

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Config struct {
	TimeoutSeconds    int     `json:"timeout_seconds"`
	UserAgent         string  `json:"user_agent"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
	// DumpDir, when set, receives a file per http exchange.
	DumpDir           string  `json:"dump_dir"`
}

// Session is the single http entrypoint of a run. It is not safe for
// concurrent use, fetches are expected to happen one after another.
type Session struct {
	http  *resty.Client
	cache *httpcache.Store
}

func New(cache *httpcache.Store, config Config) *Session {
	client := resty.New()
	if config.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client.SetHeader("user-agent", userAgent)
	if config.TimeoutSeconds > 0 {
		client.SetTimeout(time.Duration(config.TimeoutSeconds) * time.Second)
	}

	if config.RequestsPerSecond > 0 {
		rateLimiter := rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(client, "pydocparser.lib.session/http")

	if config.DumpDir != "" {
		dump, err := restyutil.NewDumpDir(config.DumpDir)
		if err != nil {
			slog.Warn("failed to prepare http dump directory", "dir", config.DumpDir, "err", err)
		} else {
			restyutil.DumpExchanges(client, dump)
		}
	}

	return &Session{
		http:  client,
		cache: cache,
	}
}

// get returns the body of `link`, from the cache when possible.
func (s *Session) get(ctx context.Context, link string) ([]byte, error) {
	cached, err := s.cache.Get(ctx, link)
	if err == nil {
		cacheHits.Add(ctx, 1)
		slog.DebugContext(ctx, "cache hit", "url", link)
		return cached.Body, nil
	}
	if !errors.Is(err, httpcache.ErrNotFound) {
		slog.WarnContext(ctx, "failed to read cache", "url", link, "err", err)
	}

	body, err := s.Download(ctx, link)
	if err != nil {
		return nil, err
	}

	err = s.cache.Set(ctx, httpcache.Response{
		Url:    link,
		Status: 200,
		Body:   body,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to write cache", "url", link, "err", err)
	}
	return body, nil
}

// Fetch returns the parsed page at `link` or nil if it could not be
// fetched or parsed. Failures are logged, callers only need to skip.
func (s *Session) Fetch(ctx context.Context, link string) *goquery.Document {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	body, err := s.get(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch page")
		slog.ErrorContext(ctx, "failed to fetch page", "url", link, "err", err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		slog.ErrorContext(ctx, "failed to parse page", "url", link, "err", err)
		return nil
	}
	return doc
}

func (s *Session) Locate(sel *goquery.Selection, query htmlutil.Query) (*goquery.Selection, error) {
	return htmlutil.Find(sel, query)
}

// Download performs an uncached GET and returns the raw body.
func (s *Session) Download(ctx context.Context, link string) ([]byte, error) {
	res, err := s.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("unexpected status %s", res.Status())
	}
	return res.Body(), nil
}

func (s *Session) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}
