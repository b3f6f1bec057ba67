package driver

import (
	"crypto/sha256"
	"reflect"
	"testing"

	"irislint/internal/balance"
)

func TestResultCacheRoundTrip(t *testing.T) {
	cache, err := OpenResultCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := balance.DefaultOptions()
	fp := opts.Fingerprint()
	key := MakeCacheKey(sha256.Sum256([]byte("(a \"b")), fp)

	if _, ok, err := cache.Get(key, fp); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	want := balance.ScanString("(a \"b")
	if err := cache.Put(key, fp, &want); err != nil {
		t.Fatal(err)
	}
	got, ok, err := cache.Get(key, fp)
	if err != nil || !ok {
		t.Fatalf("Get after Put: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}

	if _, ok, _ := cache.Get(key, "other"); ok {
		t.Error("fingerprint mismatch must be a miss")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := cache.Get(key, fp); ok {
		t.Error("DropAll must clear entries")
	}
}

func TestMakeCacheKeyDependsOnOptions(t *testing.T) {
	h := sha256.Sum256([]byte("()"))
	if MakeCacheKey(h, "a") == MakeCacheKey(h, "b") {
		t.Fatal("keys must differ by fingerprint")
	}
}

func TestNilResultCache(t *testing.T) {
	var c *ResultCache
	if err := c.Put(CacheKey{}, "", &balance.Result{}); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(CacheKey{}, ""); ok || err != nil {
		t.Fatal("nil cache must miss silently")
	}
}
