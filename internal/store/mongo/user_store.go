package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/mk1945/cloudvault/internal/domain"
	"github.com/mk1945/cloudvault/internal/store"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const userCollection = "users"

// UserStore is the MongoDB implementation of the store.UserStore interface.
type UserStore struct {
	db *mongo.Database
}

// NewUserStore creates a new UserStore.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user document.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	res, err := s.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrConflict
		}
		return err
	}
	user.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

// Update replaces an existing user document.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	res, err := s.db.Collection(userCollection).ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := s.db.Collection(userCollection).FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves a user by email address.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// FindByUsername retrieves a user by username.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

// FindByID retrieves a user by ID.
func (s *UserStore) FindByID(ctx context.Context, id bson.ObjectID) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// FindByVerificationToken retrieves the user with an unexpired activation
// token matching the given hash.
func (s *UserStore) FindByVerificationToken(ctx context.Context, hashedToken string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{
		"verificationToken":       hashedToken,
		"verificationTokenExpire": bson.M{"$gt": time.Now()},
	})
}

// FindByResetToken retrieves the user with an unexpired password reset token
// matching the given hash.
func (s *UserStore) FindByResetToken(ctx context.Context, hashedToken string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{
		"resetPasswordToken":  hashedToken,
		"resetPasswordExpire": bson.M{"$gt": time.Now()},
	})
}
