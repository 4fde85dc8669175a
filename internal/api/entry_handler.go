package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mk1945/cloudvault/internal/domain"
	"github.com/mk1945/cloudvault/internal/service"
)

// EntryHandler holds the dependencies for file/folder HTTP handlers.
type EntryHandler struct {
	service service.EntryService
}

// NewEntryHandler creates a new EntryHandler with its dependencies.
func NewEntryHandler(svc service.EntryService) *EntryHandler {
	return &EntryHandler{service: svc}
}

// --- Request/Response Structs with Validation ---

type uploadURLRequest struct {
	Filename string `json:"filename"`
	FileType string `json:"fileType"`
	Size     int64  `json:"size"`
	ParentID string `json:"parentId"`
}

func (r *uploadURLRequest) Validate() error {
	if len(r.Filename) < 1 || len(r.Filename) > 256 {
		return errors.New("filename is required and must be less than 256 characters")
	}
	if r.FileType == "" {
		return errors.New("fileType is required")
	}
	if r.Size < 0 {
		return errors.New("size must not be negative")
	}
	return nil
}

type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
}

func (r *createFolderRequest) Validate() error {
	if len(r.Name) < 1 || len(r.Name) > 256 {
		return errors.New("folder name must be between 1 and 256 characters")
	}
	return nil
}

// --- Handlers ---

// GetUploadURL handles POST /api/files/upload-url. It returns a presigned
// upload URL and the ID of the metadata entry, which is persisted before the
// client performs (or skips) the actual upload.
func (h *EntryHandler) GetUploadURL(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, NewUnauthorizedError("User ID not found in token"))
		return
	}

	var req uploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, NewBadRequestError("Invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, NewBadRequestError(err.Error()))
		return
	}

	slot, err := h.service.RequestUpload(r.Context(), ownerID, req.Filename, req.FileType, req.Size, req.ParentID)
	if err != nil {
		apiErr := FromServiceError(err)
		writeJSON(w, apiErr.Status, apiErr)
		return
	}

	writeJSON(w, http.StatusCreated, slot)
}

// CreateFolder handles POST /api/files/folder.
func (h *EntryHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, NewUnauthorizedError("User ID not found in token"))
		return
	}

	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, NewBadRequestError("Invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, NewBadRequestError(err.Error()))
		return
	}

	folder, err := h.service.CreateFolder(r.Context(), ownerID, req.Name, req.ParentID)
	if err != nil {
		apiErr := FromServiceError(err)
		writeJSON(w, apiErr.Status, apiErr)
		return
	}

	writeJSON(w, http.StatusCreated, folder)
}

// GetList handles GET /api/files?parentId=. An absent parentId or the literal
// "root" lists the caller's top-level entries.
func (h *EntryHandler) GetList(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, NewUnauthorizedError("User ID not found in token"))
		return
	}

	parentID := r.URL.Query().Get("parentId")

	entries, err := h.service.ListEntries(r.Context(), ownerID, parentID)
	if err != nil {
		apiErr := FromServiceError(err)
		writeJSON(w, apiErr.Status, apiErr)
		return
	}

	// Return an empty array `[]` instead of `null` when there are no entries.
	if entries == nil {
		entries = []*domain.Entry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// Share handles GET /api/files/{id}/share?expiresIn=. expiresIn is in
// seconds; the service applies the default when it is absent or malformed.
func (h *EntryHandler) Share(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, NewUnauthorizedError("User ID not found in token"))
		return
	}

	expiresIn, _ := strconv.Atoi(r.URL.Query().Get("expiresIn"))

	link, err := h.service.Share(r.Context(), ownerID, r.PathValue("id"), time.Duration(expiresIn)*time.Second)
	if err != nil {
		apiErr := FromServiceError(err)
		writeJSON(w, apiErr.Status, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

// GetSharedFolder handles GET /api/files/shared/{token}. It is the only
// unauthenticated entry point into the tree; the capability token is the
// entire authorization.
func (h *EntryHandler) GetSharedFolder(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ResolvePublicFolder(r.Context(), r.PathValue("token"))
	if err != nil {
		apiErr := FromServiceError(err)
		writeJSON(w, apiErr.Status, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Delete handles DELETE /api/files/{id}.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, NewUnauthorizedError("User ID not found in token"))
		return
	}

	if err := h.service.Remove(r.Context(), ownerID, r.PathValue("id")); err != nil {
		apiErr := FromServiceError(err)
		writeJSON(w, apiErr.Status, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed"})
}
