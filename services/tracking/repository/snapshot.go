package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/piresc/fleetcast/internal/pkg/constants"
	"github.com/piresc/fleetcast/internal/pkg/database"
	"github.com/piresc/fleetcast/internal/pkg/logger"
	"github.com/piresc/fleetcast/internal/pkg/models"
)

// SnapshotRepo keeps a Redis copy of the live snapshot
type SnapshotRepo struct {
	redisClient *database.RedisClient
	ttl         time.Duration
}

// NewSnapshotRepository creates a new snapshot repository.
// A zero ttl keeps records until they are deleted.
func NewSnapshotRepository(redisClient *database.RedisClient, ttl time.Duration) *SnapshotRepo {
	return &SnapshotRepo{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

// SaveRecord stores the record. A firstSeen record is moved to the end of the
// order, matching a vehicle that reappears after eviction; otherwise its
// existing position is kept.
func (r *SnapshotRepo) SaveRecord(ctx context.Context, record models.LocationRecord, firstSeen bool) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal vehicle record: %w", err)
	}

	key := fmt.Sprintf(constants.KeyVehicleRecord, record.ID)
	_, err = r.redisClient.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, r.ttl)
		z := &redis.Z{
			Score:  float64(time.Now().UnixNano()),
			Member: record.ID,
		}
		if firstSeen {
			pipe.ZAdd(ctx, constants.KeyVehicleOrder, z)
		} else {
			pipe.ZAddNX(ctx, constants.KeyVehicleOrder, z)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save vehicle %s: %w", record.ID, err)
	}
	return nil
}

// DeleteRecords removes records and their order entries
func (r *SnapshotRepo) DeleteRecords(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, 0, len(ids))
	members := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, fmt.Sprintf(constants.KeyVehicleRecord, id))
		members = append(members, id)
	}

	_, err := r.redisClient.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, constants.KeyVehicleOrder, members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete vehicles: %w", err)
	}
	return nil
}

// LoadRecords returns every mirrored record in first-seen order.
// Order entries whose record expired or cannot be decoded are pruned.
func (r *SnapshotRepo) LoadRecords(ctx context.Context) ([]models.LocationRecord, error) {
	ids, err := r.redisClient.Client.ZRange(ctx, constants.KeyVehicleOrder, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read vehicle order: %w", err)
	}
	if len(ids) == 0 {
		return []models.LocationRecord{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, fmt.Sprintf(constants.KeyVehicleRecord, id))
	}

	values, err := r.redisClient.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read vehicle records: %w", err)
	}

	records := make([]models.LocationRecord, 0, len(ids))
	var stale []interface{}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var rec models.LocationRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.ID != ids[i] {
			logger.Warn("Discarding unreadable mirrored vehicle",
				logger.String("vehicle_id", ids[i]),
				logger.Any("decode_error", err))
			stale = append(stale, ids[i])
			continue
		}
		records = append(records, rec)
	}

	if len(stale) > 0 {
		if err := r.redisClient.Client.ZRem(ctx, constants.KeyVehicleOrder, stale...).Err(); err != nil {
			logger.Warn("Failed to prune vehicle order", logger.Err(err))
		}
	}

	return records, nil
}
