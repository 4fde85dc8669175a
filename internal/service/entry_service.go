package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mk1945/cloudvault/internal/domain"
	"github.com/mk1945/cloudvault/internal/platform/crypto"
	"github.com/mk1945/cloudvault/internal/storage"
	"github.com/mk1945/cloudvault/internal/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Errors returned by the entry service. The API layer translates these into
// status codes; see api.FromServiceError.
var (
	// ErrForbidden means the entry exists but belongs to someone else. It is
	// always checked before any mutation or sharing operation.
	ErrForbidden = errors.New("not authorized to access this item")
	// ErrInvalidParent means a supplied parent ID does not resolve to a
	// folder owned by the caller. Cross-owner parents are rejected with the
	// same error so the response does not reveal whether the ID exists.
	ErrInvalidParent = errors.New("parent folder does not exist")
	// ErrNameRequired is returned for empty filenames and folder names.
	ErrNameRequired = errors.New("a name is required")
)

// RootParentID is the query-parameter sentinel for the top level of a tenant's
// tree. An absent parent parameter means the same thing.
const RootParentID = "root"

// accessedByPublicShare labels access-log records written when a folder is
// resolved through a share link, where no authenticated user exists.
const accessedByPublicShare = "shared-link"

// UploadSlot is the result of RequestUpload: a presigned URL the client PUTs
// the raw bytes to, and the ID of the already-persisted metadata entry.
type UploadSlot struct {
	UploadURL string `json:"uploadUrl"`
	FileID    string `json:"fileId"`
}

// ShareLink is the result of Share.
type ShareLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SharedFolderSummary describes the shared folder itself in a public listing.
type SharedFolderSummary struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
}

// SharedEntry is one child in a public listing. Files carry a short-lived
// download URL so the whole listing is consumable without further
// authorization; folders carry none.
type SharedEntry struct {
	*domain.Entry
	URL string `json:"url,omitempty"`
}

// SharedFolderView is the result of ResolvePublicFolder.
type SharedFolderView struct {
	Folder SharedFolderSummary `json:"folder"`
	Files  []SharedEntry       `json:"files"`
}

// EntryService composes the tree store, the object storage gateway and the
// share token service to authorize and serve all file/folder operations.
type EntryService interface {
	RequestUpload(ctx context.Context, ownerID bson.ObjectID, filename, mimeType string, size int64, parentID string) (*UploadSlot, error)
	CreateFolder(ctx context.Context, ownerID bson.ObjectID, name, parentID string) (*domain.Entry, error)
	ListEntries(ctx context.Context, ownerID bson.ObjectID, parentID string) ([]*domain.Entry, error)
	Share(ctx context.Context, ownerID bson.ObjectID, entryID string, ttl time.Duration) (*ShareLink, error)
	ResolvePublicFolder(ctx context.Context, token string) (*SharedFolderView, error)
	Remove(ctx context.Context, ownerID bson.ObjectID, entryID string) error
}

// entryService is the concrete implementation of the EntryService interface.
type entryService struct {
	entries     store.EntryStore
	users       store.UserStore
	gateway     storage.Gateway
	shareTokens *crypto.ShareTokenService

	frontendURL     string
	defaultShareTTL time.Duration
	publicFileTTL   time.Duration

	now func() time.Time
}

// NewEntryService creates a new instance of the entry service.
func NewEntryService(
	entries store.EntryStore,
	users store.UserStore,
	gateway storage.Gateway,
	shareTokens *crypto.ShareTokenService,
	frontendURL string,
	defaultShareTTL, publicFileTTL time.Duration,
) EntryService {
	return &entryService{
		entries:         entries,
		users:           users,
		gateway:         gateway,
		shareTokens:     shareTokens,
		frontendURL:     frontendURL,
		defaultShareTTL: defaultShareTTL,
		publicFileTTL:   publicFileTTL,
		now:             time.Now,
	}
}

// resolveParent turns an API-level parent ID into a store-level one. The empty
// string and the "root" sentinel mean top level (nil). Anything else must be a
// well-formed ID of a folder owned by the caller.
func (s *entryService) resolveParent(ctx context.Context, ownerID bson.ObjectID, parentID string) (*bson.ObjectID, error) {
	if parentID == "" || parentID == RootParentID {
		return nil, nil
	}

	pid, err := bson.ObjectIDFromHex(parentID)
	if err != nil {
		return nil, ErrInvalidParent
	}

	parent, err := s.entries.GetByID(ctx, pid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidParent
		}
		return nil, fmt.Errorf("failed to look up parent folder: %w", err)
	}
	if parent.OwnerID != ownerID || !parent.IsFolder {
		return nil, ErrInvalidParent
	}
	return &pid, nil
}

// RequestUpload issues a presigned upload URL and persists the file's metadata
// immediately. The entry therefore exists before (and regardless of whether)
// the client completes the PUT against the returned URL.
func (s *entryService) RequestUpload(ctx context.Context, ownerID bson.ObjectID, filename, mimeType string, size int64, parentID string) (*UploadSlot, error) {
	if filename == "" {
		return nil, ErrNameRequired
	}

	parent, err := s.resolveParent(ctx, ownerID, parentID)
	if err != nil {
		return nil, err
	}

	// Scope the key by owner and timestamp so concurrent uploads of the
	// same filename cannot collide.
	key := fmt.Sprintf("%s/%d-%s", ownerID.Hex(), s.now().UnixMilli(), filename)

	uploadURL, err := s.gateway.IssueUploadURL(ctx, key, mimeType)
	if err != nil {
		return nil, err
	}

	entry := &domain.Entry{
		Filename:   filename,
		StorageKey: key,
		OwnerID:    ownerID,
		Size:       size,
		MimeType:   mimeType,
		ParentID:   parent,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create file entry: %w", err)
	}

	return &UploadSlot{
		UploadURL: uploadURL,
		FileID:    entry.ID.Hex(),
	}, nil
}

// CreateFolder creates a folder entry. Its storage key is synthetic and never
// resolved against object storage.
func (s *entryService) CreateFolder(ctx context.Context, ownerID bson.ObjectID, name, parentID string) (*domain.Entry, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	parent, err := s.resolveParent(ctx, ownerID, parentID)
	if err != nil {
		return nil, err
	}

	folder := &domain.Entry{
		Filename:   name,
		StorageKey: "folder-" + uuid.NewString(),
		OwnerID:    ownerID,
		Size:       0,
		MimeType:   domain.FolderMimeType,
		IsFolder:   true,
		ParentID:   parent,
	}
	if err := s.entries.Create(ctx, folder); err != nil {
		return nil, fmt.Errorf("failed to create folder entry: %w", err)
	}

	return folder, nil
}

// ListEntries returns the direct children of the given parent, folders first,
// newest first within each group.
func (s *entryService) ListEntries(ctx context.Context, ownerID bson.ObjectID, parentID string) ([]*domain.Entry, error) {
	parent, err := s.resolveParent(ctx, ownerID, parentID)
	if err != nil {
		return nil, err
	}

	entries, err := s.entries.ListChildren(ctx, ownerID, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	domain.SortEntries(entries)
	return entries, nil
}

// Share produces a public link for an entry the caller owns. Files are shared
// by minting a presigned download URL directly; there is no capability token
// for a single file because its bytes are the whole payload. Folders are
// shared through a signed capability token embedded in a front-end URL.
func (s *entryService) Share(ctx context.Context, ownerID bson.ObjectID, entryID string, ttl time.Duration) (*ShareLink, error) {
	id, err := bson.ObjectIDFromHex(entryID)
	if err != nil {
		return nil, store.ErrNotFound
	}

	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	if ttl <= 0 {
		ttl = s.defaultShareTTL
	}

	if entry.IsFolder {
		token, expiresAt, err := s.shareTokens.Issue(entry.ID.Hex(), ttl)
		if err != nil {
			return nil, err
		}
		return &ShareLink{
			URL:       fmt.Sprintf("%s/shared/%s", s.frontendURL, token),
			ExpiresAt: expiresAt,
		}, nil
	}

	url, err := s.gateway.IssueDownloadURL(ctx, entry.StorageKey, ttl)
	if err != nil {
		return nil, err
	}
	return &ShareLink{
		URL:       url,
		ExpiresAt: s.now().Add(ttl),
	}, nil
}

// ResolvePublicFolder verifies a share token and returns the folder's listing
// with a fixed-TTL download URL attached to every file, so the caller needs
// no further authorization to fetch any of them.
func (s *entryService) ResolvePublicFolder(ctx context.Context, token string) (*SharedFolderView, error) {
	folderID, err := s.shareTokens.Verify(token)
	if err != nil {
		return nil, err
	}

	id, err := bson.ObjectIDFromHex(folderID)
	if err != nil {
		return nil, crypto.ErrShareTokenInvalid
	}

	folder, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !folder.IsFolder {
		return nil, crypto.ErrShareTokenInvalid
	}

	children, err := s.entries.ListChildren(ctx, folder.OwnerID, &folder.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared folder: %w", err)
	}
	domain.SortEntries(children)

	files := make([]SharedEntry, 0, len(children))
	for _, child := range children {
		shared := SharedEntry{Entry: child}
		if !child.IsFolder {
			url, err := s.gateway.IssueDownloadURL(ctx, child.StorageKey, s.publicFileTTL)
			if err != nil {
				return nil, err
			}
			shared.URL = url
		}
		files = append(files, shared)
	}

	// The owner's username is display metadata; a missing owner record must
	// not break an otherwise valid share link.
	ownerName := ""
	if owner, err := s.users.FindByID(ctx, folder.OwnerID); err == nil {
		ownerName = owner.Username
	}

	// Record the access. The listing is still served if the write fails.
	_ = s.entries.AppendAccessLog(ctx, folder.ID, domain.AccessLog{
		AccessedBy: accessedByPublicShare,
		AccessedAt: s.now(),
	})

	return &SharedFolderView{
		Folder: SharedFolderSummary{
			ID:        folder.ID.Hex(),
			Filename:  folder.Filename,
			Owner:     ownerName,
			CreatedAt: folder.CreatedAt,
		},
		Files: files,
	}, nil
}

// Remove deletes an entry the caller owns. Deleting a folder removes its
// direct children only; grandchildren are left orphaned, pointing at a
// deleted parent. Object storage content is not reclaimed here.
func (s *entryService) Remove(ctx context.Context, ownerID bson.ObjectID, entryID string) error {
	id, err := bson.ObjectIDFromHex(entryID)
	if err != nil {
		return store.ErrNotFound
	}

	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if entry.OwnerID != ownerID {
		return ErrForbidden
	}

	if entry.IsFolder {
		if _, err := s.entries.DeleteByParent(ctx, ownerID, entry.ID); err != nil {
			return fmt.Errorf("failed to delete folder contents: %w", err)
		}
	}

	if err := s.entries.Delete(ctx, entry.ID); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}
