package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/develevate/platform-api/internal/core/domain"
)

const usersCollection = "users"

// UserRepository implements ports.UserRepository. The visit log is embedded in the user
// document so a visit and its day-uniqueness check are a single atomic update.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoVisit struct {
	Day      time.Time `bson:"day"`
	Recorded bool      `bson:"recorded"`
}

type mongoUser struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Email         string             `bson:"email"`
	Name          string             `bson:"name"`
	Role          string             `bson:"role"`
	PasswordHash  string             `bson:"password_hash"`
	VisitLog      []mongoVisit       `bson:"visit_log"`
	CurrentStreak int                `bson:"current_streak"`
	LongestStreak int                `bson:"longest_streak"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

// EnsureIndexes makes email the unique identity key.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// CreateIfAbsent inserts the user; a duplicate email reports false without error.
func (r *UserRepository) CreateIfAbsent(ctx context.Context, user *domain.User) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoUser{
		Email:         user.Email,
		Name:          user.Name,
		Role:          user.Role,
		PasswordHash:  user.PasswordHash,
		VisitLog:      []mongoVisit{},
		CurrentStreak: user.CurrentStreak,
		LongestStreak: user.LongestStreak,
		CreatedAt:     user.CreatedAt.UTC(),
		UpdatedAt:     user.UpdatedAt.UTC(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert user: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	return true, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// AppendVisit pushes visit unless the log already holds a record for that day.
func (r *UserRepository) AppendVisit(ctx context.Context, userID string, visit domain.VisitRecord) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":           oid,
		"visit_log.day": bson.M{"$ne": visit.Day.UTC()},
	}
	update := bson.M{
		"$push": bson.M{"visit_log": mongoVisit{Day: visit.Day.UTC(), Recorded: visit.Recorded}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("append visit: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// UpdateStreaks sets current_streak and raises longest_streak with $max, so the stored
// longest streak never goes down even under concurrent writers.
func (r *UserRepository) UpdateStreaks(ctx context.Context, userID string, current, longest int) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"current_streak": current, "updated_at": time.Now().UTC()},
		"$max": bson.M{"longest_streak": longest},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update streaks: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomainUser(mu), nil
}

func toDomainUser(mu mongoUser) *domain.User {
	visits := make([]domain.VisitRecord, len(mu.VisitLog))
	for i, v := range mu.VisitLog {
		visits[i] = domain.VisitRecord{Day: v.Day.UTC(), Recorded: v.Recorded}
	}
	return &domain.User{
		ID:            mu.ID.Hex(),
		Email:         mu.Email,
		Name:          mu.Name,
		Role:          mu.Role,
		PasswordHash:  mu.PasswordHash,
		VisitLog:      visits,
		CurrentStreak: mu.CurrentStreak,
		LongestStreak: mu.LongestStreak,
		CreatedAt:     mu.CreatedAt.UTC(),
		UpdatedAt:     mu.UpdatedAt.UTC(),
	}
}
