// Package imageget retrieves photo attachments referenced by the export.
// Results are validated, cached by event id, and retried with backoff when
// the remote endpoint rate-limits with HTTP 500.
package imageget

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"slices"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/soyeahso/takeout2sms/internal/domain"
	"github.com/soyeahso/takeout2sms/internal/logging"
)

var allowedContentTypes = []string{"image/jpeg", "image/png", "image/gif"}

// CachedImage is a successfully retrieved and validated image.
type CachedImage struct {
	MimeType string
	Data     []byte
}

// Cache persists retrieved images keyed by event id. Only successful
// retrievals are stored; not-found outcomes are re-checked every run.
type Cache interface {
	Get(key string) (CachedImage, bool, error)
	Put(key string, img CachedImage) error
}

// Client fetches attachment images with retry, backoff, and caching.
type Client struct {
	http  *retryablehttp.Client
	cache Cache
	log   *logging.Logger
}

// New builds a client whose retries on HTTP 500 stay within maxBackoff per
// attempt; exhausting the budget fails the run.
func New(cache Cache, maxBackoff time.Duration, log *logging.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = retriesWithin(maxBackoff)
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			return false, err
		}
		// The Takeout photo endpoints answer rate limiting with a bare 500.
		return resp.StatusCode == http.StatusInternalServerError, nil
	}
	rc.Backoff = func(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
		return backoffDelay(attemptNum + 1)
	}

	return &Client{http: rc, cache: cache, log: log.Sub("imageget")}
}

// backoffDelay grows quadratically with the retry count plus a sub-second
// jitter.
func backoffDelay(retry int) time.Duration {
	d := 0.5 * float64(retry)
	return time.Duration((d*d + rand.Float64()) * float64(time.Second))
}

// retriesWithin counts the retries whose deterministic delay stays at or
// under the ceiling; the next one would exceed it.
func retriesWithin(maxBackoff time.Duration) int {
	if maxBackoff <= 0 {
		return 0
	}
	return int(2 * math.Sqrt(maxBackoff.Seconds()))
}

// Fetch returns the image at url, consulting the cache first. A 404 is not
// an error: the message survives with an in-band diagnostic part instead.
func (c *Client) Fetch(ctx context.Context, url, cacheKey string) (domain.ContentPart, error) {
	if cacheKey != "" {
		img, ok, err := c.cache.Get(cacheKey)
		if err != nil {
			return nil, err
		}
		if ok {
			c.log.Debug().Str("key", cacheKey).Msg("image cache hit")
			return domain.ImagePart{Mime: img.MimeType, Data: img.Data}, nil
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building image request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.TransientError{Message: "retrieving " + url, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.log.Warn().Str("url", url).Str("key", cacheKey).Msg("image not found")
		diag, err := domain.NewDiagnosticPart(domain.DiagImageNotFound, url)
		if err != nil {
			return nil, err
		}
		return diag, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("retrieving %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading image body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if !slices.Contains(allowedContentTypes, contentType) {
		return nil, domain.Schemaf("unknown image content type %q for %s", contentType, url)
	}

	if cacheKey != "" {
		if err := c.cache.Put(cacheKey, CachedImage{MimeType: contentType, Data: body}); err != nil {
			return nil, err
		}
	}

	c.log.Debug().Str("url", url).Str("content_type", contentType).Int("bytes", len(body)).Msg("image retrieved")
	return domain.ImagePart{Mime: contentType, Data: body}, nil
}
