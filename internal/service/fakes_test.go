package service

import (
	"context"
	"sync"
	"time"

	"github.com/mk1945/cloudvault/internal/domain"
	"github.com/mk1945/cloudvault/internal/storage"
	"github.com/mk1945/cloudvault/internal/store"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// -------- test fakes --------

// fakeEntryStore is an in-memory store.EntryStore. Its clock advances one
// second per Create so creation order is always reflected in CreatedAt.
type fakeEntryStore struct {
	mu      sync.Mutex
	entries map[bson.ObjectID]*domain.Entry
	clock   time.Time

	createErr error
	listErr   error
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{
		entries: map[bson.ObjectID]*domain.Entry{},
		clock:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeEntryStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeEntryStore) Create(_ context.Context, entry *domain.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	now := f.tick()
	entry.ID = bson.NewObjectID()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	f.entries[entry.ID] = entry
	return nil
}

func (f *fakeEntryStore) GetByID(_ context.Context, id bson.ObjectID) (*domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return entry, nil
}

func sameParent(a, b *bson.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (f *fakeEntryStore) ListChildren(_ context.Context, ownerID bson.ObjectID, parentID *bson.ObjectID) ([]*domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var children []*domain.Entry
	for _, entry := range f.entries {
		if entry.OwnerID == ownerID && sameParent(entry.ParentID, parentID) {
			children = append(children, entry)
		}
	}
	domain.SortEntries(children)
	return children, nil
}

func (f *fakeEntryStore) Delete(_ context.Context, id bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeEntryStore) DeleteByParent(_ context.Context, ownerID, parentID bson.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, entry := range f.entries {
		if entry.OwnerID == ownerID && entry.ParentID != nil && *entry.ParentID == parentID {
			delete(f.entries, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeEntryStore) AppendAccessLog(_ context.Context, id bson.ObjectID, log domain.AccessLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return store.ErrNotFound
	}
	entry.AccessLogs = append(entry.AccessLogs, log)
	return nil
}

// fakeUserStore is an in-memory store.UserStore.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[bson.ObjectID]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[bson.ObjectID]*domain.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = bson.NewObjectID()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) findBy(match func(*domain.User) bool) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if match(user) {
			return user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return f.findBy(func(u *domain.User) bool { return u.Email == email })
}

func (f *fakeUserStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return f.findBy(func(u *domain.User) bool { return u.Username == username })
}

func (f *fakeUserStore) FindByID(_ context.Context, id bson.ObjectID) (*domain.User, error) {
	return f.findBy(func(u *domain.User) bool { return u.ID == id })
}

func (f *fakeUserStore) FindByVerificationToken(_ context.Context, hashedToken string) (*domain.User, error) {
	return f.findBy(func(u *domain.User) bool {
		return u.VerificationToken == hashedToken &&
			u.VerificationTokenExpire != nil && u.VerificationTokenExpire.After(time.Now())
	})
}

func (f *fakeUserStore) FindByResetToken(_ context.Context, hashedToken string) (*domain.User, error) {
	return f.findBy(func(u *domain.User) bool {
		return u.ResetPasswordToken == hashedToken &&
			u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(time.Now())
	})
}

// failGateway always fails signing, after the bounded retries a real gateway
// would perform.
type failGateway struct{}

func (failGateway) IssueUploadURL(_ context.Context, key, _ string) (string, error) {
	return "", &storage.SigningError{Op: "upload", Key: key, Err: context.DeadlineExceeded}
}

func (failGateway) IssueDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "", &storage.SigningError{Op: "download", Key: key, Err: context.DeadlineExceeded}
}

// fakeEmailService records sent tokens instead of talking SMTP.
type fakeEmailService struct {
	mu               sync.Mutex
	activationTokens map[string]string // email -> raw token
	resetTokens      map[string]string
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{
		activationTokens: map[string]string{},
		resetTokens:      map[string]string{},
	}
}

func (f *fakeEmailService) SendActivationEmail(user *domain.User, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activationTokens[user.Email] = token
	return nil
}

func (f *fakeEmailService) SendPasswordResetEmail(user *domain.User, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetTokens[user.Email] = token
	return nil
}

func (f *fakeEmailService) activationToken(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activationTokens[email]
}

func (f *fakeEmailService) resetToken(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resetTokens[email]
}
