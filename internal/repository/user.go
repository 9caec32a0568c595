package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sujal-pawar/legacy-note-api/internal/model"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// GetUserByEmailWithPassword includes the password hash, which is
	// projected out of every other read.
	GetUserByEmailWithPassword(ctx context.Context, email string) (*model.User, error)

	GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error)

	// GetUserByResetTokenHash returns the user holding an unexpired reset
	// token with the given hash.
	GetUserByResetTokenHash(ctx context.Context, tokenHash string) (*model.User, error)

	// SetVerificationOTP stores a pending verification code hash with its expiry.
	SetVerificationOTP(ctx context.Context, id, otpHash string, expiresAt time.Time) error

	// ClearVerificationOTP unsets the pending verification code pair.
	ClearVerificationOTP(ctx context.Context, id string) error

	// MarkEmailVerified marks the account verified and unsets the
	// verification code pair in the same update.
	MarkEmailVerified(ctx context.Context, id string) error

	// SetResetToken stores a pending password reset token hash with its expiry.
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error

	// ClearResetToken unsets the pending reset token pair.
	ClearResetToken(ctx context.Context, id string) error

	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// LinkGoogleID attaches a Google identity to an existing account and
	// marks the email verified.
	LinkGoogleID(ctx context.Context, id, googleID string) error
}

const userCollection = "users"

// defaultProjection keeps password hashes out of reads unless a caller
// asks for them explicitly.
var defaultProjection = bson.M{"password_hash": 0}

type userMongoRepository struct {
	db *mongo.Database
}

func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetPartialFilterExpression(
				bson.M{"google_id": bson.M{"$exists": true}},
			),
		},
		{
			Keys: bson.D{{Key: "reset_token_hash", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	return r.findOne(ctx, bson.M{"_id": objectID}, defaultProjection)
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, defaultProjection)
}

func (r *userMongoRepository) GetUserByEmailWithPassword(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, nil)
}

func (r *userMongoRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"google_id": googleID}, defaultProjection)
}

func (r *userMongoRepository) GetUserByResetTokenHash(ctx context.Context, tokenHash string) (*model.User, error) {
	filter := bson.M{
		"reset_token_hash": tokenHash,
		"reset_expires_at": bson.M{"$gt": time.Now()},
	}

	return r.findOne(ctx, filter, defaultProjection)
}

func (r *userMongoRepository) SetVerificationOTP(
	ctx context.Context,
	id, otpHash string,
	expiresAt time.Time,
) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"verification_otp_hash":   otpHash,
			"verification_expires_at": expiresAt,
			"updated_at":              time.Now(),
		},
	})
}

func (r *userMongoRepository) ClearVerificationOTP(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{
		"$unset": bson.M{
			"verification_otp_hash":   "",
			"verification_expires_at": "",
		},
		"$set": bson.M{"updated_at": time.Now()},
	})
}

func (r *userMongoRepository) MarkEmailVerified(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"email_verified": true,
			"updated_at":     time.Now(),
		},
		"$unset": bson.M{
			"verification_otp_hash":   "",
			"verification_expires_at": "",
		},
	})
}

func (r *userMongoRepository) SetResetToken(
	ctx context.Context,
	id, tokenHash string,
	expiresAt time.Time,
) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"reset_token_hash": tokenHash,
			"reset_expires_at": expiresAt,
			"updated_at":       time.Now(),
		},
	})
}

func (r *userMongoRepository) ClearResetToken(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{
		"$unset": bson.M{
			"reset_token_hash": "",
			"reset_expires_at": "",
		},
		"$set": bson.M{"updated_at": time.Now()},
	})
}

func (r *userMongoRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"password_hash": passwordHash,
			"updated_at":    time.Now(),
		},
	})
}

func (r *userMongoRepository) LinkGoogleID(ctx context.Context, id, googleID string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"google_id":      googleID,
			"email_verified": true,
			"updated_at":     time.Now(),
		},
	})
}

func (r *userMongoRepository) findOne(
	ctx context.Context,
	filter bson.M,
	projection bson.M,
) (*model.User, error) {
	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}

	result := r.db.Collection(userCollection).FindOne(ctx, filter, opts)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	result, err := r.db.Collection(userCollection).UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}
