package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/domain"
)

// Bucket names
var (
	bucketProfile = []byte("profile")
	bucketDNP     = []byte("dnp")
)

const (
	profileKey = "current"
	dnpKey     = "entries"
)

// Cache implements domain.Cache using BoltDB, with an in-memory layer for
// hot-path reads.
type Cache struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	cache map[string][]byte
}

// NewCache opens (or creates) the cache database under dir. An empty dir
// selects memory-only mode with no persistence.
func NewCache(dir string) (*Cache, error) {
	if dir == "" {
		return &Cache{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "nodrake.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketProfile, bucketDNP} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db, cache: make(map[string][]byte)}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// GetProfile returns the cached profile, or false if none is stored.
func (c *Cache) GetProfile() (*domain.UserProfile, bool) {
	var profile domain.UserProfile
	if !c.get(bucketProfile, profileKey, &profile) {
		return nil, false
	}
	return &profile, true
}

// SetProfile stores the profile.
func (c *Cache) SetProfile(profile *domain.UserProfile) error {
	return c.set(bucketProfile, profileKey, profile)
}

// GetDNPList returns the cached DNP entries, or false if none are stored.
func (c *Cache) GetDNPList() ([]domain.DNPEntry, bool) {
	var entries []domain.DNPEntry
	if !c.get(bucketDNP, dnpKey, &entries) {
		return nil, false
	}
	return entries, true
}

// SetDNPList stores the DNP entries.
func (c *Cache) SetDNPList(entries []domain.DNPEntry) error {
	return c.set(bucketDNP, dnpKey, entries)
}

// Clear removes all cached data.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.cache = make(map[string][]byte)
	c.mu.Unlock()

	if c.db == nil {
		return nil
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketProfile, bucketDNP} {
			if err := tx.DeleteBucket(bucket); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

// === Generic helpers ===

func (c *Cache) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	c.mu.RLock()
	if data, ok := c.cache[cacheKey]; ok {
		c.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	c.mu.RUnlock()

	if c.db == nil {
		return false
	}

	var data []byte
	c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	c.mu.Lock()
	c.cache[cacheKey] = data
	c.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (c *Cache) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	cacheKey := string(bucket) + ":" + key
	c.mu.Lock()
	c.cache[cacheKey] = data
	c.mu.Unlock()

	if c.db == nil {
		return nil
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("bucket %s missing", bucket)
		}
		return b.Put([]byte(key), data)
	})
}
