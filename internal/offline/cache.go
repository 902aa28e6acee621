// Package offline is a versioned response cache that keeps the site usable
// without a network. Static assets and fonts are served cache-first; pages
// and API calls go to the network first and fall back to the cache.
package offline

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

// BucketPrefix namespaces cache buckets; the version follows it.
const BucketPrefix = "arogyam-"

type Error string

func (err Error) Error() string { return string(err) }

const ErrNotCached Error = "offline: response not cached"

// Strategy is how a request is answered.
type Strategy int

const (
	Bypass Strategy = iota
	CacheFirst
	NetworkFirst
)

func (s Strategy) String() string {
	switch s {
	case CacheFirst:
		return "cache-first"
	case NetworkFirst:
		return "network-first"
	default:
		return "bypass"
	}
}

var staticExtensions = map[string]bool{
	".css": true, ".js": true, ".mjs": true, ".png": true, ".jpg": true,
	".jpeg": true, ".webp": true, ".avif": true, ".gif": true, ".svg": true,
	".ico": true, ".woff": true, ".woff2": true, ".ttf": true, ".otf": true,
}

var fontExtensions = map[string]bool{".woff": true, ".woff2": true, ".ttf": true, ".otf": true}

type Options struct {
	Version   string
	Origin    string
	FontHosts []string
	// Next performs network requests. Defaults to http.DefaultTransport.
	Next http.RoundTripper
	Log  *zap.Logger
}

type Cache struct {
	db        *bolt.DB
	bucket    []byte
	origin    *url.URL
	fontHosts map[string]bool
	next      http.RoundTripper
	log       *zap.Logger
}

type entry struct {
	Status int
	Header http.Header
	Body   []byte
	Stored time.Time
}

func Open(dbPath string, opts Options) (*Cache, error) {
	if opts.Version == "" {
		return nil, fmt.Errorf("offline: cache version is required")
	}
	origin, err := url.Parse(opts.Origin)
	if err != nil {
		return nil, fmt.Errorf("offline: invalid origin: %w", err)
	}
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if opts.Next == nil {
		opts.Next = http.DefaultTransport
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	hosts := make(map[string]bool, len(opts.FontHosts))
	for _, h := range opts.FontHosts {
		hosts[strings.ToLower(h)] = true
	}
	c := &Cache{
		db:        db,
		bucket:    []byte(BucketPrefix + opts.Version),
		origin:    origin,
		fontHosts: hosts,
		next:      opts.Next,
		log:       opts.Log.Named("offline"),
	}
	return c, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Name is the bucket holding this version's responses.
func (c *Cache) Name() string {
	return string(c.bucket)
}

// Classify picks the strategy for req.
func (c *Cache) Classify(req *http.Request) Strategy {
	if req.Method != http.MethodGet {
		return Bypass
	}
	ext := strings.ToLower(path.Ext(req.URL.Path))
	host := strings.ToLower(req.URL.Hostname())
	if c.fontHosts[host] || fontExtensions[ext] {
		return CacheFirst
	}
	if c.sameOrigin(req.URL) && staticExtensions[ext] {
		return CacheFirst
	}
	return NetworkFirst
}

func (c *Cache) sameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, c.origin.Scheme) && strings.EqualFold(u.Host, c.origin.Host)
}

// Install fetches every manifest path and stores the responses. Nothing is
// stored unless every fetch succeeds.
func (c *Cache) Install(ctx context.Context, manifest []string) error {
	entries := make(map[string]*entry, len(manifest))
	for _, p := range manifest {
		ref, err := url.Parse(p)
		if err != nil {
			return fmt.Errorf("offline: invalid manifest entry %q: %w", p, err)
		}
		target := c.origin.ResolveReference(ref)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
		if err != nil {
			return err
		}
		e, err := c.fetch(req)
		if err != nil {
			return fmt.Errorf("offline: install %s: %w", target, err)
		}
		if e.Status != http.StatusOK {
			return fmt.Errorf("offline: install %s: status %d", target, e.Status)
		}
		entries[cacheKey(req.URL)] = e
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(c.bucket)
		if err != nil {
			return err
		}
		for key, e := range entries {
			raw, err := encode(e)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(key), raw); err != nil {
				return err
			}
		}
		c.log.Info("Offline cache installed", zap.String("cache", c.Name()), zap.Int("entries", len(entries)))
		return nil
	})
}

// Activate deletes the buckets of every other cache version.
func (c *Cache) Activate() ([]string, error) {
	var removed []string
	err := c.db.Update(func(tx *bolt.Tx) error {
		var stale [][]byte
		err := tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			if bytes.HasPrefix(name, []byte(BucketPrefix)) && !bytes.Equal(name, c.bucket) {
				stale = append(stale, append([]byte(nil), name...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, name := range stale {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			removed = append(removed, string(name))
		}
		_, err = tx.CreateBucketIfNotExists(c.bucket)
		return err
	})
	if err == nil && len(removed) > 0 {
		c.log.Info("Purged old offline caches", zap.Strings("caches", removed))
	}
	return removed, err
}

// Fetch answers req according to its strategy.
func (c *Cache) Fetch(req *http.Request) (*http.Response, error) {
	switch c.Classify(req) {
	case CacheFirst:
		if e, ok := c.lookup(req.URL); ok {
			return e.response(req), nil
		}
		e, err := c.fetch(req)
		if err != nil {
			return nil, err
		}
		c.store(req.URL, e)
		return e.response(req), nil

	case NetworkFirst:
		e, err := c.fetch(req)
		if err == nil {
			c.store(req.URL, e)
			return e.response(req), nil
		}
		if cached, ok := c.lookup(req.URL); ok {
			c.log.Debug("Serving cached response", zap.String("url", req.URL.String()), zap.Error(err))
			return cached.response(req), nil
		}
		return nil, err

	default:
		return c.next.RoundTrip(req)
	}
}

// RoundTrip makes Cache usable as an http.Client transport.
func (c *Cache) RoundTrip(req *http.Request) (*http.Response, error) {
	return c.Fetch(req)
}

func (c *Cache) fetch(req *http.Request) (*entry, error) {
	resp, err := c.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &entry{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: body, Stored: time.Now().UTC()}, nil
}

func (c *Cache) lookup(u *url.URL) (*entry, bool) {
	var e *entry
	err := c.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(c.bucket)
		if bucket == nil {
			return ErrNotCached
		}
		raw := bucket.Get([]byte(cacheKey(u)))
		if raw == nil {
			return ErrNotCached
		}
		var decoded entry
		if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&decoded); err != nil {
			return err
		}
		e = &decoded
		return nil
	})
	if err != nil {
		if err != ErrNotCached {
			c.log.Warn("Failed to read cached response", zap.String("url", u.String()), zap.Error(err))
		}
		return nil, false
	}
	return e, true
}

// store keeps successful responses only.
func (c *Cache) store(u *url.URL, e *entry) {
	if e.Status != http.StatusOK {
		return
	}
	raw, err := encode(e)
	if err != nil {
		c.log.Warn("Failed to encode response", zap.String("url", u.String()), zap.Error(err))
		return
	}
	err = c.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(c.bucket)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(cacheKey(u)), raw)
	})
	if err != nil {
		c.log.Warn("Failed to cache response", zap.String("url", u.String()), zap.Error(err))
	}
}

func (e *entry) response(req *http.Request) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status)),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        e.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

func cacheKey(u *url.URL) string {
	clean := *u
	clean.Fragment = ""
	return clean.String()
}

func encode(e *entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
