package httpcache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"pydocparser/lib/configutil"

	"github.com/PuerkitoBio/purell"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

var tracer = otel.Tracer("pydocparser.lib.httpcache")

var ErrNotFound = errors.New("response not in cache")

// Config selects where cached responses live. A local sqlite file is used
// unless Url points at a remote libsql database.
type Config struct {
	File       string `json:"file"`
	Url        string `json:"url"`
	AuthToken  string `json:"auth_token"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

func (config Config) TTL() time.Duration {
	return time.Duration(config.TTLSeconds) * time.Second
}

func (config Config) OpenDB(base string) (*sql.DB, error) {
	if config.Url != "" {
		values := url.Values{}
		if config.AuthToken != "" {
			values.Add("authToken", config.AuthToken)
		}
		return sql.Open("libsql", config.Url+"?"+values.Encode())
	}

	if config.File == "" {
		return nil, fmt.Errorf("a cache file was not specified")
	}
	dbpath := config.File
	if dbpath != ":memory:" {
		dbpath = configutil.ResolvePath(base, config.File)
		err := os.MkdirAll(filepath.Dir(dbpath), 0777)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	if dbpath != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

type Response struct {
	Url       string
	Status    int
	Body      []byte
	CreatedAt time.Time
}

type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewStore creates the schema if needed. A zero ttl keeps responses forever.
func NewStore(ctx context.Context, db *sql.DB, ttl time.Duration) (*Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

// Key normalizes a url so that trivially different spellings of the same
// page share a cache entry.
func Key(link string) (string, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	return purell.NormalizeURL(
		parsed,
		purell.FlagsSafe|
			purell.FlagRemoveDotSegments|
			purell.FlagRemoveDirectoryIndex|
			purell.FlagRemoveFragment|
			purell.FlagSortQuery,
	), nil
}

func (s *Store) Get(ctx context.Context, link string) (Response, error) {
	ctx, span := tracer.Start(ctx, "cache:get")
	defer span.End()

	key, err := Key(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return Response{}, err
	}
	span.SetAttributes(attribute.String("cache_key", key))

	var res Response
	var createdAt, expiresAt int64
	err = s.db.QueryRowContext(
		ctx,
		"select url, status, body, created_at, expires_at from response where key = ?",
		key,
	).Scan(&res.Url, &res.Status, &res.Body, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Response{}, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read cached response")
		return Response{}, err
	}

	if expiresAt > 0 && s.now().Unix() >= expiresAt {
		span.AddEvent("delete expired cache key")
		_, err = s.db.ExecContext(ctx, "delete from response where key = ?", key)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to delete expired key")
		}
		return Response{}, ErrNotFound
	}

	res.CreatedAt = time.Unix(createdAt, 0)
	span.SetAttributes(attribute.Int("contentlength", len(res.Body)))
	return res, nil
}

func (s *Store) Set(ctx context.Context, res Response) error {
	ctx, span := tracer.Start(ctx, "cache:set")
	defer span.End()

	key, err := Key(res.Url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return err
	}
	span.SetAttributes(attribute.String("cache_key", key))

	now := s.now()
	var expiresAt int64
	if s.ttl > 0 {
		expiresAt = now.Add(s.ttl).Unix()
	}

	_, err = s.db.ExecContext(
		ctx,
		`insert or replace into response(key, url, status, body, created_at, expires_at)
		values (?, ?, ?, ?, ?, ?)`,
		key, res.Url, res.Status, res.Body, now.Unix(), expiresAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to store response")
		return err
	}
	return nil
}

// Clear removes every cached response.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "delete from response")
	return err
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "select count(*) from response").Scan(&n)
	return n, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
