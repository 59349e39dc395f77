package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisGeocodeCache maps normalized address text to resolved coordinates.
// Entries have no TTL by default: addresses do not move, and the upstream
// geocoder is rate-limited, so evictions are more expensive than staleness.
type RedisGeocodeCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisGeocodeCache(addr, password string, db int) (*RedisGeocodeCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("geocode cache: redis connection failed: %w", err)
	}

	return &RedisGeocodeCache{client: client, prefix: "logistico:geocode:"}, nil
}

// NewRedisGeocodeCacheWithClient wraps an existing client (tests use this
// with miniredis).
func NewRedisGeocodeCacheWithClient(client *redis.Client) *RedisGeocodeCache {
	return &RedisGeocodeCache{client: client, prefix: "logistico:geocode:"}
}

func (c *RedisGeocodeCache) Close() error { return c.client.Close() }

// Normalize collapses whitespace and lowercases the address so equivalent
// spellings share one cache entry.
func Normalize(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

type cachedCoords struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

func (c *RedisGeocodeCache) key(address string) string {
	return c.prefix + Normalize(address)
}

// Get fetches cached coordinates for the address. A miss is (zero, false, nil).
func (c *RedisGeocodeCache) Get(ctx context.Context, address string) (domain.Coordinates, bool, error) {
	if Normalize(address) == "" {
		return domain.Coordinates{}, false, errors.New("geocode cache: address must not be empty")
	}

	raw, err := c.client.Get(ctx, c.key(address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("geocode cache: get: %w", err)
	}

	var cc cachedCoords
	if err := json.Unmarshal(raw, &cc); err != nil {
		// A corrupt entry behaves like a miss; the next Put repairs it.
		log.Printf("geocode cache: corrupt entry for %q: %v", address, err)
		return domain.Coordinates{}, false, nil
	}

	return domain.Coordinates{Lon: cc.Lon, Lat: cc.Lat}, true, nil
}

// Put stores resolved coordinates under the normalized address.
func (c *RedisGeocodeCache) Put(ctx context.Context, address string, pos domain.Coordinates) error {
	if Normalize(address) == "" {
		return errors.New("geocode cache: address must not be empty")
	}

	raw, err := json.Marshal(cachedCoords{Lon: pos.Lon, Lat: pos.Lat})
	if err != nil {
		return fmt.Errorf("geocode cache: marshal: %w", err)
	}

	if err := c.client.Set(ctx, c.key(address), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("geocode cache: set: %w", err)
	}
	return nil
}
