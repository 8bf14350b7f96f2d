package testutil

import (
	"context"
	"testing"
	"time"

	"pydocparser/lib/httpcache"
)

// SetupCache returns an empty in-memory response cache that is closed when
// the test ends. A zero ttl never expires entries.
func SetupCache(t testing.TB, ttl time.Duration) *httpcache.Store {
	db, err := httpcache.Config{File: ":memory:"}.OpenDB("")
	if err != nil {
		t.Fatal(err)
	}
	store, err := httpcache.NewStore(context.Background(), db, ttl)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
