// Package locationcache mirrors live party positions into Redis hashes so
// other processes can read them without talking to the tracker.
//
// Each party is stored under location:<role>:<id> with the fields lat, lng,
// name, online and last_update (unix seconds).
package locationcache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/tracking"
	"harvestlog/internal/core/ports"
	"harvestlog/internal/pkg/errs"

	"github.com/go-redis/redis/v8"
)

// DefaultTTL bounds how long a position survives without refresh.
const DefaultTTL = 5 * time.Minute

var _ ports.LocationPublisher = (*Cache)(nil)

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) (*Cache, error) {
	if rdb == nil {
		return nil, errs.NewValueIsRequiredError("rdb")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}, nil
}

// Key returns the hash key of a party.
func Key(role kernel.Role, id string) string {
	return "location:" + role.String() + ":" + id
}

// Publish writes the position and refreshes the expiry in one pipeline.
func (c *Cache) Publish(ctx context.Context, e tracking.EntityLocation) error {
	if err := e.Validate(); err != nil {
		return err
	}

	key := Key(e.Role(), e.ID())
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			"lat":         e.Location().Lat(),
			"lng":         e.Location().Lng(),
			"name":        e.Name(),
			"online":      strconv.FormatBool(e.Online()),
			"last_update": e.LastUpdated().Unix(),
		})
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache location %s: %w", key, err)
	}
	return nil
}

// Get reads a cached position back.
func (c *Cache) Get(ctx context.Context, role kernel.Role, id string) (tracking.EntityLocation, error) {
	key := Key(role, id)
	fields, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return tracking.EntityLocation{}, fmt.Errorf("read location %s: %w", key, err)
	}
	if len(fields) == 0 {
		return tracking.EntityLocation{}, errs.NewObjectNotFoundErrorWithCause("location", key, redis.Nil)
	}

	lat, latErr := strconv.ParseFloat(fields["lat"], 64)
	lng, lngErr := strconv.ParseFloat(fields["lng"], 64)
	unix, tsErr := strconv.ParseInt(fields["last_update"], 10, 64)
	online, onErr := strconv.ParseBool(fields["online"])
	if err := errors.Join(latErr, lngErr, tsErr, onErr); err != nil {
		return tracking.EntityLocation{}, errs.NewValueIsInvalidErrorWithCause(key, err)
	}

	loc, err := kernel.NewLocation(lat, lng)
	if err != nil {
		return tracking.EntityLocation{}, err
	}
	return tracking.NewEntityLocation(id, role, fields["name"], loc, online, time.Unix(unix, 0))
}
