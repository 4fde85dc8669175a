package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents an account in the 'users' collection.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string        `bson:"username" json:"username"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"password" json:"-"`
	IsVerified   bool          `bson:"isVerified" json:"isVerified"`

	// Account activation. The token stored here is the SHA-256 hash of the
	// value mailed to the user, so a database leak does not leak usable links.
	VerificationToken       string     `bson:"verificationToken,omitempty" json:"-"`
	VerificationTokenExpire *time.Time `bson:"verificationTokenExpire,omitempty" json:"-"`

	// Password reset, same hashing scheme as activation.
	ResetPasswordToken  string     `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire *time.Time `bson:"resetPasswordExpire,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
