// Package redislocations implements the courier location store on Redis.
// Each ping lives under its own key with a TTL equal to the ping freshness
// window, so stale locations disappear by key expiry instead of by filtering.
package redislocations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

const keyPrefix = "courier:location:"

// Store keeps the latest location ping per courier in Redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a location store. ttl is the ping freshness window;
// entries older than that expire and the courier drops out of the
// candidate set on its own.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// pingPayload is the wire format of a stored ping.
type pingPayload struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	ReportedAt time.Time `json:"reported_at"`
}

// Put stores the latest ping for a courier, replacing any previous one and
// resetting the expiry.
func (s *Store) Put(ctx context.Context, courierID kernel.UUID, ping ports.LocationPing) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	if err := ping.Location.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(pingPayload{
		Latitude:   ping.Location.Latitude(),
		Longitude:  ping.Location.Longitude(),
		ReportedAt: ping.ReportedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal location ping: %w", err)
	}

	return s.client.Set(ctx, key(courierID), payload, s.ttl).Err()
}

// Get returns the stored ping for a courier.
// The second return value is false when the courier has no unexpired ping.
func (s *Store) Get(ctx context.Context, courierID kernel.UUID) (ports.LocationPing, bool, error) {
	if err := courierID.Validate(); err != nil {
		return ports.LocationPing{}, false, err
	}

	raw, err := s.client.Get(ctx, key(courierID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.LocationPing{}, false, nil
	}
	if err != nil {
		return ports.LocationPing{}, false, err
	}

	ping, err := unmarshalPing(raw)
	if err != nil {
		return ports.LocationPing{}, false, err
	}

	return ping, true, nil
}

// GetMany returns the stored pings for the given couriers in one round trip.
// Couriers without an unexpired ping are absent from the result.
func (s *Store) GetMany(
	ctx context.Context,
	courierIDs []kernel.UUID,
) (map[kernel.UUID]ports.LocationPing, error) {
	pings := make(map[kernel.UUID]ports.LocationPing, len(courierIDs))
	if len(courierIDs) == 0 {
		return pings, nil
	}

	keys := make([]string, 0, len(courierIDs))
	for _, id := range courierIDs {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		keys = append(keys, key(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, value := range values {
		if value == nil {
			continue
		}

		raw, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected value type %T for key %s", value, keys[i])
		}

		ping, unmarshalErr := unmarshalPing([]byte(raw))
		if unmarshalErr != nil {
			return nil, unmarshalErr
		}
		pings[courierIDs[i]] = ping
	}

	return pings, nil
}

func unmarshalPing(raw []byte) (ports.LocationPing, error) {
	var payload pingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ports.LocationPing{}, fmt.Errorf("unmarshal location ping: %w", err)
	}

	location, err := kernel.NewGeoLocation(payload.Latitude, payload.Longitude)
	if err != nil {
		return ports.LocationPing{}, err
	}

	return ports.LocationPing{
		Location:   location,
		ReportedAt: payload.ReportedAt,
	}, nil
}

func key(courierID kernel.UUID) string {
	return keyPrefix + courierID.String()
}
