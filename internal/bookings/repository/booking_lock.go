package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	bookingserrors "roomdesk/internal/bookings/errors"
	"roomdesk/pkg/config"
	"roomdesk/pkg/model"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LockCollectionName = "Booking_locks"

	lockKeyPrefix = "booking_lock"
)

// BookingLockRepository serializes commits on one (date, resource) pair.
// Acquire returns bookingserrors.ErrSlotLocked while another holder owns key.
type BookingLockRepository interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (*model.BookingLock, error)
	Release(ctx context.Context, lock *model.BookingLock) error
}

// LockKey builds the lock id for a resource on a given day.
func LockKey(date string, resource model.Resource) string {
	r := strings.NewReplacer(" ", "_", ":", "_")
	return fmt.Sprintf("%s_%s_%s_%s", lockKeyPrefix, date, r.Replace(resource.Branch), r.Replace(resource.Room))
}

func newLock(key string, ttl time.Duration) *model.BookingLock {
	now := time.Now().UTC()
	return &model.BookingLock{
		ID:        key,
		Token:     uuid.New().String(),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

type mongoBookingLockRepository struct {
	collection *mongo.Collection
}

func NewMongoBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

// Acquire inserts the lock document. The unique _id makes a concurrent insert
// fail with a duplicate key error. A holder that died leaves an expired
// document behind, which is cleared before retrying once.
func (r *mongoBookingLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (*model.BookingLock, error) {
	lock := newLock(key, ttl)

	_, err := r.collection.InsertOne(ctx, lock)
	if err == nil {
		return lock, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("failed to acquire booking lock: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lt": time.Now().UTC()}})
	if err != nil {
		return nil, fmt.Errorf("failed to clear expired booking lock: %w", err)
	}
	if res.DeletedCount == 0 {
		return nil, bookingserrors.ErrSlotLocked
	}

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, bookingserrors.ErrSlotLocked
		}
		return nil, fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	return lock, nil
}

func (r *mongoBookingLockRepository) Release(ctx context.Context, lock *model.BookingLock) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lock.ID, "token": lock.Token})
	if err != nil {
		return fmt.Errorf("failed to release booking lock: %w", err)
	}
	return nil
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisBookingLockRepository struct {
	client *redis.Client
}

func NewRedisBookingLockRepository(cfg *config.Config) BookingLockRepository {
	return &redisBookingLockRepository{client: cfg.Client.Redis}
}

func (r *redisBookingLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (*model.BookingLock, error) {
	lock := newLock(key, ttl)

	ok, err := r.client.SetNX(ctx, key, lock.Token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	if !ok {
		return nil, bookingserrors.ErrSlotLocked
	}
	return lock, nil
}

func (r *redisBookingLockRepository) Release(ctx context.Context, lock *model.BookingLock) error {
	err := releaseScript.Run(ctx, r.client, []string{lock.ID}, lock.Token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release booking lock: %w", err)
	}
	return nil
}

type memoryBookingLockRepository struct {
	mu    sync.Mutex
	locks map[string]*model.BookingLock
}

func NewMemoryBookingLockRepository() BookingLockRepository {
	return &memoryBookingLockRepository{locks: make(map[string]*model.BookingLock)}
}

func (r *memoryBookingLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (*model.BookingLock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if held, ok := r.locks[key]; ok && time.Now().UTC().Before(held.ExpiresAt) {
		return nil, bookingserrors.ErrSlotLocked
	}
	lock := newLock(key, ttl)
	r.locks[key] = lock
	return lock, nil
}

func (r *memoryBookingLockRepository) Release(ctx context.Context, lock *model.BookingLock) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if held, ok := r.locks[lock.ID]; ok && held.Token == lock.Token {
		delete(r.locks, lock.ID)
	}
	return nil
}
