package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/soyeahso/takeout2sms/internal/imageget"
)

// ImageCache persists retrieved attachment images keyed by event id.
// Entries have no TTL: an event's photo never changes once exported.
type ImageCache struct {
	db *DB
}

// NewImageCache wraps a database as an imageget.Cache.
func NewImageCache(db *DB) *ImageCache {
	return &ImageCache{db: db}
}

// Get returns the cached image for key, or ok=false when absent.
func (c *ImageCache) Get(key string) (imageget.CachedImage, bool, error) {
	var (
		mime string
		data []byte
	)
	err := c.db.sql.QueryRow(
		"SELECT mime_type, data FROM image_cache WHERE event_id = ?", key,
	).Scan(&mime, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return imageget.CachedImage{}, false, nil
	}
	if err != nil {
		return imageget.CachedImage{}, false, fmt.Errorf("reading image cache: %w", err)
	}
	return imageget.CachedImage{MimeType: mime, Data: data}, true, nil
}

// Put stores or replaces the cached image for key.
func (c *ImageCache) Put(key string, img imageget.CachedImage) error {
	_, err := c.db.sql.Exec(`
		INSERT INTO image_cache (event_id, mime_type, data) VALUES (?, ?, ?)
		ON CONFLICT(event_id) DO UPDATE SET mime_type = excluded.mime_type, data = excluded.data`,
		key, img.MimeType, img.Data,
	)
	if err != nil {
		return fmt.Errorf("writing image cache: %w", err)
	}
	return nil
}
