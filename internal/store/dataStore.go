package store

import (
	"context"
	"errors"

	"github.com/mk1945/cloudvault/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Standard errors returned by the store layer. This allows the service layer
// to handle specific database errors without being coupled to the database
// implementation.
var (
	ErrNotFound = errors.New("requested item not found")
	ErrConflict = errors.New("item already exists")
)

// UserStore defines the interface for user data operations. Any struct that
// implements these methods can be used as a user database by the application.
type UserStore interface {
	// Create inserts a new user into the database.
	Create(ctx context.Context, user *domain.User) error

	// Update modifies an existing user in the database.
	Update(ctx context.Context, user *domain.User) error

	// FindByEmail retrieves a user by their email address. It should return
	// store.ErrNotFound if no user is found.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindByUsername retrieves a user by username, or store.ErrNotFound.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByID retrieves a user by their unique ID. It should return
	// store.ErrNotFound if no user is found.
	FindByID(ctx context.Context, id bson.ObjectID) (*domain.User, error)

	// FindByVerificationToken retrieves the user holding the given hashed
	// activation token, provided it has not expired. Returns store.ErrNotFound
	// otherwise.
	FindByVerificationToken(ctx context.Context, hashedToken string) (*domain.User, error)

	// FindByResetToken retrieves the user holding the given hashed password
	// reset token, provided it has not expired. Returns store.ErrNotFound
	// otherwise.
	FindByResetToken(ctx context.Context, hashedToken string) (*domain.User, error)
}

// EntryStore defines the interface for the file/folder tree. Every listing is
// scoped by owner here, at the store layer, so an attacker-supplied parent ID
// can never widen a query to another tenant's entries.
type EntryStore interface {
	// Create inserts a new entry and assigns its ID.
	Create(ctx context.Context, entry *domain.Entry) error

	// GetByID retrieves an entry by ID regardless of owner; callers perform
	// the ownership check. Returns store.ErrNotFound if absent.
	GetByID(ctx context.Context, id bson.ObjectID) (*domain.Entry, error)

	// ListChildren retrieves the direct children of parentID belonging to
	// ownerID, ordered folders-first then newest-first. A nil parentID lists
	// the owner's top-level entries.
	ListChildren(ctx context.Context, ownerID bson.ObjectID, parentID *bson.ObjectID) ([]*domain.Entry, error)

	// Delete removes a single entry. Returns store.ErrNotFound if absent.
	Delete(ctx context.Context, id bson.ObjectID) error

	// DeleteByParent removes the direct children of parentID and reports how
	// many entries were removed. It does not recurse into sub-folders.
	DeleteByParent(ctx context.Context, ownerID, parentID bson.ObjectID) (int64, error)

	// AppendAccessLog appends one access record to an entry's accessLogs.
	// Records are append-only; nothing ever rewrites or prunes them.
	AppendAccessLog(ctx context.Context, id bson.ObjectID, log domain.AccessLog) error
}
