package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/mk1945/cloudvault/internal/domain"
	"github.com/mk1945/cloudvault/internal/store"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const entryCollection = "entries"

// EntryStore is the MongoDB implementation of the store.EntryStore interface.
// Files and folders live in one collection, mirroring the single-entity model.
type EntryStore struct {
	db *mongo.Database
}

// NewEntryStore creates a new EntryStore.
func NewEntryStore(db *mongo.Database) *EntryStore {
	return &EntryStore{db: db}
}

// Create inserts a new entry document and assigns its ID and timestamps.
func (s *EntryStore) Create(ctx context.Context, entry *domain.Entry) error {
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	res, err := s.db.Collection(entryCollection).InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrConflict
		}
		return err
	}
	entry.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

// GetByID finds an entry by its ID alone. Ownership checks belong to the
// service layer, which needs the entry either way to report Forbidden
// distinctly from NotFound.
func (s *EntryStore) GetByID(ctx context.Context, id bson.ObjectID) (*domain.Entry, error) {
	var entry domain.Entry
	err := s.db.Collection(entryCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListChildren retrieves the direct children of parentID owned by ownerID.
// The filter always includes the owner, never the parent alone.
func (s *EntryStore) ListChildren(ctx context.Context, ownerID bson.ObjectID, parentID *bson.ObjectID) ([]*domain.Entry, error) {
	filter := bson.M{
		"owner":  ownerID,
		"parent": parentID, // nil matches top-level entries
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "isFolder", Value: -1}, {Key: "createdAt", Value: -1}})

	cursor, err := s.db.Collection(entryCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*domain.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	// The query already sorts, but the listing contract is owned by the
	// domain so every store backend agrees on tie-breaking.
	domain.SortEntries(entries)
	return entries, nil
}

// Delete removes a single entry document.
func (s *EntryStore) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := s.db.Collection(entryCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteByParent removes the direct children of a folder. It intentionally
// does not recurse; see the service layer for the cascade semantics.
func (s *EntryStore) DeleteByParent(ctx context.Context, ownerID, parentID bson.ObjectID) (int64, error) {
	res, err := s.db.Collection(entryCollection).DeleteMany(ctx, bson.M{
		"owner":  ownerID,
		"parent": parentID,
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AppendAccessLog pushes one access record onto an entry's accessLogs array.
func (s *EntryStore) AppendAccessLog(ctx context.Context, id bson.ObjectID, log domain.AccessLog) error {
	res, err := s.db.Collection(entryCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"accessLogs": log},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
