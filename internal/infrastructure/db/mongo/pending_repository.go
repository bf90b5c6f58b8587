package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/develevate/platform-api/internal/core/domain"
)

const pendingCollection = "pending_registrations"

// pendingRetention is how long an expired row is kept before the TTL monitor removes it.
// Expiry itself is enforced lazily at verification time.
const pendingRetention = time.Hour

// PendingRegistrationRepository implements ports.PendingRegistrationRepository.
type PendingRegistrationRepository struct {
	coll *mongo.Collection
}

func NewPendingRegistrationRepository(db *mongo.Database) *PendingRegistrationRepository {
	return &PendingRegistrationRepository{coll: db.Collection(pendingCollection)}
}

type mongoPending struct {
	Email        string    `bson:"_id"`
	Name         string    `bson:"name"`
	Role         string    `bson:"role"`
	PasswordHash string    `bson:"password_hash"`
	OTPHash      string    `bson:"otp_hash"`
	ExpiresAt    time.Time `bson:"expires_at"`
	Version      string    `bson:"version"`
	CreatedAt    time.Time `bson:"created_at"`
}

// EnsureIndexes adds a TTL index that sweeps long-expired rows.
func (r *PendingRegistrationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(pendingRetention.Seconds())),
	})
	return err
}

func (r *PendingRegistrationRepository) Get(ctx context.Context, email string) (*domain.PendingRegistration, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoPending
	if err := r.coll.FindOne(ctx, bson.M{"_id": email}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoPendingRegistration
		}
		return nil, fmt.Errorf("find pending registration: %w", err)
	}
	return &domain.PendingRegistration{
		Email:        mp.Email,
		Name:         mp.Name,
		Role:         mp.Role,
		PasswordHash: mp.PasswordHash,
		OTPHash:      mp.OTPHash,
		ExpiresAt:    mp.ExpiresAt.UTC(),
		Version:      mp.Version,
		CreatedAt:    mp.CreatedAt.UTC(),
	}, nil
}

// Upsert replaces the row for p.Email, keyed by _id so two writers can never create two rows.
func (r *PendingRegistrationRepository) Upsert(ctx context.Context, p *domain.PendingRegistration) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.Email}, toMongoPending(p), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert pending registration: %w", err)
	}
	return nil
}

func (r *PendingRegistrationRepository) CreateIfAbsent(ctx context.Context, p *domain.PendingRegistration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, toMongoPending(p)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert pending registration: %w", err)
	}
	return true, nil
}

func (r *PendingRegistrationRepository) Delete(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": email}); err != nil {
		return fmt.Errorf("delete pending registration: %w", err)
	}
	return nil
}

// DeleteIfVersion is a compare-and-delete on the version stamp.
func (r *PendingRegistrationRepository) DeleteIfVersion(ctx context.Context, email, version string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": email, "version": version})
	if err != nil {
		return false, fmt.Errorf("delete pending registration: %w", err)
	}
	return res.DeletedCount == 1, nil
}

func toMongoPending(p *domain.PendingRegistration) mongoPending {
	return mongoPending{
		Email:        p.Email,
		Name:         p.Name,
		Role:         p.Role,
		PasswordHash: p.PasswordHash,
		OTPHash:      p.OTPHash,
		ExpiresAt:    p.ExpiresAt.UTC(),
		Version:      p.Version,
		CreatedAt:    p.CreatedAt.UTC(),
	}
}
