package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/develevate/platform-api/internal/core/domain"
)

// pendingRetention keeps a row around after its OTP expires so verification can still
// report the expiry instead of a missing registration.
const pendingRetention = time.Hour

// PendingStore implements ports.PendingRegistrationRepository on Redis.
// Key format: pending:<email>
type PendingStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewPendingStore(client *redis.Client) *PendingStore {
	return &PendingStore{client: client, now: time.Now}
}

type pendingRecord struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"password_hash"`
	OTPHash      string    `json:"otp_hash"`
	ExpiresAt    time.Time `json:"expires_at"`
	Version      string    `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *PendingStore) Get(ctx context.Context, email string) (*domain.PendingRegistration, error) {
	raw, err := s.client.Get(ctx, s.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNoPendingRegistration
		}
		return nil, fmt.Errorf("get pending registration: %w", err)
	}
	return decodePending(raw)
}

func (s *PendingStore) Upsert(ctx context.Context, p *domain.PendingRegistration) error {
	raw, err := encodePending(p)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(p.Email), raw, s.ttl(p)).Err(); err != nil {
		return fmt.Errorf("upsert pending registration: %w", err)
	}
	return nil
}

func (s *PendingStore) CreateIfAbsent(ctx context.Context, p *domain.PendingRegistration) (bool, error) {
	raw, err := encodePending(p)
	if err != nil {
		return false, err
	}
	ok, err := s.client.SetNX(ctx, s.key(p.Email), raw, s.ttl(p)).Result()
	if err != nil {
		return false, fmt.Errorf("create pending registration: %w", err)
	}
	return ok, nil
}

func (s *PendingStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, s.key(email)).Err(); err != nil {
		return fmt.Errorf("delete pending registration: %w", err)
	}
	return nil
}

// DeleteIfVersion watches the key so a concurrent upsert aborts the delete.
func (s *PendingStore) DeleteIfVersion(ctx context.Context, email, version string) (bool, error) {
	key := s.key(email)
	deleted := false

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		p, err := decodePending(raw)
		if err != nil {
			return err
		}
		if p.Version != version {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		if err != nil {
			return err
		}
		deleted = true
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete pending registration: %w", err)
	}
	return deleted, nil
}

func (s *PendingStore) key(email string) string {
	return "pending:" + email
}

// ttl is the key lifetime: until the OTP expires plus the retention window.
func (s *PendingStore) ttl(p *domain.PendingRegistration) time.Duration {
	ttl := p.ExpiresAt.Sub(s.now()) + pendingRetention
	if ttl < pendingRetention {
		ttl = pendingRetention
	}
	return ttl
}

func encodePending(p *domain.PendingRegistration) ([]byte, error) {
	raw, err := json.Marshal(pendingRecord{
		Email:        p.Email,
		Name:         p.Name,
		Role:         p.Role,
		PasswordHash: p.PasswordHash,
		OTPHash:      p.OTPHash,
		ExpiresAt:    p.ExpiresAt.UTC(),
		Version:      p.Version,
		CreatedAt:    p.CreatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode pending registration: %w", err)
	}
	return raw, nil
}

func decodePending(raw []byte) (*domain.PendingRegistration, error) {
	var rec pendingRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode pending registration: %w", err)
	}
	return &domain.PendingRegistration{
		Email:        rec.Email,
		Name:         rec.Name,
		Role:         rec.Role,
		PasswordHash: rec.PasswordHash,
		OTPHash:      rec.OTPHash,
		ExpiresAt:    rec.ExpiresAt,
		Version:      rec.Version,
		CreatedAt:    rec.CreatedAt,
	}, nil
}
