package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a LegacyNote account.
//
// The verification and reset field pairs are transient: each pair is set
// together with its expiry and unset together once consumed, expired, or
// rolled back after a failed email send.
type User struct {
	ID                    bson.ObjectID `bson:"_id,omitempty"`
	Name                  string        `bson:"name"`
	Email                 string        `bson:"email"`
	PasswordHash          string        `bson:"password_hash,omitempty"`
	GoogleID              string        `bson:"google_id,omitempty"`
	EmailVerified         bool          `bson:"email_verified"`
	VerificationOTPHash   string        `bson:"verification_otp_hash,omitempty"`
	VerificationExpiresAt time.Time     `bson:"verification_expires_at,omitempty"`
	ResetTokenHash        string        `bson:"reset_token_hash,omitempty"`
	ResetExpiresAt        time.Time     `bson:"reset_expires_at,omitempty"`
	CreatedAt             time.Time     `bson:"created_at"`
	UpdatedAt             time.Time     `bson:"updated_at"`
}
