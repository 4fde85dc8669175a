package domain

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// FolderMimeType is the sentinel MIME type stored on folder entries. Business
// logic must never compare against it directly; use Entry.IsFolder instead.
const FolderMimeType = "application/vnd.cloudvault.folder"

// AccessLog is a single append-only access record on an Entry. Records are
// never pruned or rewritten.
type AccessLog struct {
	AccessedBy string    `bson:"accessedBy" json:"accessedBy"`
	AccessedAt time.Time `bson:"accessedAt" json:"accessedAt"`
}

// Entry is the single persisted entity of the tree store: a file or a folder.
// Files and folders share one collection, distinguished by the IsFolder flag.
type Entry struct {
	ID       bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Filename string        `bson:"filename" json:"filename"`
	// StorageKey locates the content in object storage. Folders carry a
	// synthetic "folder-{uuid}" key that is never resolved against storage.
	StorageKey string        `bson:"storageKey" json:"-"`
	OwnerID    bson.ObjectID `bson:"owner" json:"owner"`
	Size       int64         `bson:"size" json:"size"`
	MimeType   string        `bson:"mimeType" json:"mimeType"`
	IsFolder   bool          `bson:"isFolder" json:"isFolder"`
	// ParentID is nil for entries that live at the owner's root.
	ParentID   *bson.ObjectID `bson:"parent" json:"parent"`
	AccessLogs []AccessLog    `bson:"accessLogs,omitempty" json:"-"`
	CreatedAt  time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// SortEntries orders a listing the way every listing in the system is ordered:
// folders before files, and newest-created first within each group. Keeping
// the ordering here means every store backend returns the same sequence.
func SortEntries(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsFolder != entries[j].IsFolder {
			return entries[i].IsFolder
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}
