package related

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/upnext/internal/db"
	"github.com/llehouerou/upnext/internal/errmsg"
	"github.com/llehouerou/upnext/internal/logging"
	"github.com/llehouerou/upnext/internal/track"
)

// Cache stores related-track results in SQLite.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewCache creates a new Cache instance.
func NewCache(sqlDB *sql.DB, ttl time.Duration) *Cache {
	return &Cache{
		db:  sqlDB,
		ttl: ttl,
		now: time.Now,
	}
}

// isExpired checks if a cached entry is expired.
func (c *Cache) isExpired(fetchedAt int64) bool {
	return fetchedAt < c.now().Add(-c.ttl).Unix()
}

// Get returns cached related tracks for (kind, seed). A miss or an expired
// entry returns nil, nil.
func (c *Cache) Get(kind track.SourceKind, seed string) ([]track.Track, error) {
	rows, err := c.db.Query(`
		SELECT track_id, source_url, title, artist, artwork, duration, variants, fetched_at
		FROM related_tracks
		WHERE kind = ? AND seed = ?
		ORDER BY position ASC
	`, kind.String(), seed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []track.Track
	for rows.Next() {
		var (
			t         track.Track
			art       sql.NullString
			vars      sql.NullString
			fetchedAt int64
		)
		if err := rows.Scan(&t.ID, &t.SourceURL, &t.Title, &t.Artist, &art, &t.DurationSeconds, &vars, &fetchedAt); err != nil {
			return nil, err
		}

		// All rows of one entry share the same timestamp
		if c.isExpired(fetchedAt) {
			return nil, nil
		}

		t.ArtworkURL = db.NullStringValue(art)
		if v := db.NullStringValue(vars); v != "" {
			if err := json.Unmarshal([]byte(v), &t.Variants); err != nil {
				return nil, err
			}
		}
		result = append(result, t)
	}

	return result, rows.Err()
}

// Set replaces the cached related tracks for (kind, seed).
func (c *Cache) Set(kind track.SourceKind, seed string, tracks []track.Track) error {
	return db.WithTx(c.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM related_tracks WHERE kind = ? AND seed = ?`, kind.String(), seed); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO related_tracks
				(kind, seed, position, track_id, source_url, title, artist, artwork, duration, variants, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		now := c.now().Unix()
		for i := range tracks {
			t := &tracks[i]
			var vars sql.NullString
			if len(t.Variants) > 0 {
				b, err := json.Marshal(t.Variants)
				if err != nil {
					return err
				}
				vars = sql.NullString{String: string(b), Valid: true}
			}
			art := sql.NullString{String: t.ArtworkURL, Valid: t.ArtworkURL != ""}
			if _, err := stmt.Exec(kind.String(), seed, i, t.ID, t.SourceURL, t.Title, t.Artist, art, t.DurationSeconds, vars, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// Purge deletes expired entries and returns the number of rows removed.
func (c *Cache) Purge() (int64, error) {
	res, err := c.db.Exec(`DELETE FROM related_tracks WHERE fetched_at < ?`, c.now().Add(-c.ttl).Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CachedResolver serves related tracks from a Cache and falls back to the
// wrapped resolver on a miss. Empty results are not cached.
type CachedResolver struct {
	next  Resolver
	cache *Cache
	log   *log.Logger
}

// NewCachedResolver wraps next with cache.
func NewCachedResolver(next Resolver, cache *Cache, logger *log.Logger) *CachedResolver {
	return &CachedResolver{
		next:  next,
		cache: cache,
		log:   logging.Component(logger, "cache"),
	}
}

// Resolve implements Resolver.
func (r *CachedResolver) Resolve(ctx context.Context, active track.Track) []track.Track {
	kind := active.Kind()

	cached, err := r.cache.Get(kind, active.ID)
	if err != nil {
		r.log.Warn(errmsg.Format(errmsg.OpCacheRead, err))
	} else if len(cached) > 0 {
		r.log.Debug("cache hit", "kind", kind, "seed", active.ID, "tracks", len(cached))
		return cached
	}

	tracks := r.next.Resolve(ctx, active)
	if len(tracks) == 0 {
		return tracks
	}

	if err := r.cache.Set(kind, active.ID, tracks); err != nil {
		r.log.Warn(errmsg.Format(errmsg.OpCacheWrite, err))
	}
	return tracks
}
