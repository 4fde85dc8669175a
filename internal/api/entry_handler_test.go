package api

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mk1945/cloudvault/internal/domain"
	"github.com/mk1945/cloudvault/internal/platform/crypto"
	"github.com/mk1945/cloudvault/internal/service"
	"github.com/mk1945/cloudvault/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// stubEntryService lets each test script the service layer per method.
type stubEntryService struct {
	requestUpload       func(ownerID bson.ObjectID, filename, mimeType string, size int64, parentID string) (*service.UploadSlot, error)
	createFolder        func(ownerID bson.ObjectID, name, parentID string) (*domain.Entry, error)
	listEntries         func(ownerID bson.ObjectID, parentID string) ([]*domain.Entry, error)
	share               func(ownerID bson.ObjectID, entryID string, ttl time.Duration) (*service.ShareLink, error)
	resolvePublicFolder func(token string) (*service.SharedFolderView, error)
	remove              func(ownerID bson.ObjectID, entryID string) error
}

func (s *stubEntryService) RequestUpload(_ context.Context, ownerID bson.ObjectID, filename, mimeType string, size int64, parentID string) (*service.UploadSlot, error) {
	return s.requestUpload(ownerID, filename, mimeType, size, parentID)
}

func (s *stubEntryService) CreateFolder(_ context.Context, ownerID bson.ObjectID, name, parentID string) (*domain.Entry, error) {
	return s.createFolder(ownerID, name, parentID)
}

func (s *stubEntryService) ListEntries(_ context.Context, ownerID bson.ObjectID, parentID string) ([]*domain.Entry, error) {
	return s.listEntries(ownerID, parentID)
}

func (s *stubEntryService) Share(_ context.Context, ownerID bson.ObjectID, entryID string, ttl time.Duration) (*service.ShareLink, error) {
	return s.share(ownerID, entryID, ttl)
}

func (s *stubEntryService) ResolvePublicFolder(_ context.Context, token string) (*service.SharedFolderView, error) {
	return s.resolvePublicFolder(token)
}

func (s *stubEntryService) Remove(_ context.Context, ownerID bson.ObjectID, entryID string) error {
	return s.remove(ownerID, entryID)
}

// stubUserService satisfies the routes' UserHandler dependency. None of the
// tests here exercise it.
type stubUserService struct{}

func (stubUserService) Register(context.Context, string, string, string) (*domain.User, error) {
	return nil, store.ErrNotFound
}
func (stubUserService) Activate(context.Context, string) error { return store.ErrNotFound }
func (stubUserService) Login(context.Context, string, string) (*domain.User, string, string, error) {
	return nil, "", "", service.ErrInvalidCredentials
}
func (stubUserService) ForgotPassword(context.Context, string) error        { return store.ErrNotFound }
func (stubUserService) ResetPassword(context.Context, string, string) error { return store.ErrNotFound }

type apiFixture struct {
	entries *stubEntryService
	tokens  crypto.TokenGenerator
	mux     *http.ServeMux
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	entries := &stubEntryService{}
	tokens := crypto.NewJWTGenerator("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	mux := http.NewServeMux()
	RegisterRoutes(
		mux,
		NewUserHandler(stubUserService{}),
		NewEntryHandler(entries),
		NewAuthMiddleware(tokens),
		log.New(io.Discard, "", 0),
	)

	return &apiFixture{entries: entries, tokens: tokens, mux: mux}
}

func (f *apiFixture) authHeader(t *testing.T, user *domain.User) string {
	t.Helper()
	access, _, err := f.tokens.NewPair(user)
	require.NoError(t, err)
	return "Bearer " + access
}

func (f *apiFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestGetSharedFolder_Public(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	f.entries.resolvePublicFolder = func(token string) (*service.SharedFolderView, error) {
		assert.Equal(t, "tok123", token)
		return &service.SharedFolderView{
			Folder: service.SharedFolderSummary{ID: "abc", Filename: "Docs", Owner: "U"},
			Files:  []service.SharedEntry{},
		}, nil
	}

	// No Authorization header at all.
	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/files/shared/tok123", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var view service.SharedFolderView
	decodeBody(t, rec, &view)
	assert.Equal(t, "Docs", view.Folder.Filename)
	assert.Equal(t, "U", view.Folder.Owner)
}

func TestGetSharedFolder_ExpiredToken(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	f.entries.resolvePublicFolder = func(string) (*service.SharedFolderView, error) {
		return nil, crypto.ErrShareTokenExpired
	}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/files/shared/old", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Share link has expired", body["message"])
}

func TestGetSharedFolder_InvalidToken(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	f.entries.resolvePublicFolder = func(string) (*service.SharedFolderView, error) {
		return nil, crypto.ErrShareTokenInvalid
	}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/files/shared/garbage", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Shared folder not found", body["message"])
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	reqs := []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/files/upload-url", strings.NewReader("{}")),
		httptest.NewRequest(http.MethodPost, "/api/files/folder", strings.NewReader("{}")),
		httptest.NewRequest(http.MethodGet, "/api/files", nil),
		httptest.NewRequest(http.MethodGet, "/api/files/abc/share", nil),
		httptest.NewRequest(http.MethodDelete, "/api/files/abc", nil),
	}

	for _, req := range reqs {
		rec := f.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", req.Method, req.URL.Path)
	}
}

func TestRequireAuth_BadToken(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")

	rec := f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUploadURL(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	user := &domain.User{ID: bson.NewObjectID(), Email: "u@example.com"}

	f.entries.requestUpload = func(ownerID bson.ObjectID, filename, mimeType string, size int64, parentID string) (*service.UploadSlot, error) {
		assert.Equal(t, user.ID, ownerID)
		assert.Equal(t, "a.pdf", filename)
		assert.Equal(t, "application/pdf", mimeType)
		assert.Equal(t, int64(1024), size)
		assert.Equal(t, "root", parentID)
		return &service.UploadSlot{UploadURL: "https://mock-s3.local/k", FileID: "fid"}, nil
	}

	body := `{"filename":"a.pdf","fileType":"application/pdf","size":1024,"parentId":"root"}`
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload-url", strings.NewReader(body))
	req.Header.Set("Authorization", f.authHeader(t, user))

	rec := f.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var slot service.UploadSlot
	decodeBody(t, rec, &slot)
	assert.Equal(t, "https://mock-s3.local/k", slot.UploadURL)
	assert.Equal(t, "fid", slot.FileID)
}

func TestGetUploadURL_ValidationFailures(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	user := &domain.User{ID: bson.NewObjectID(), Email: "u@example.com"}

	tests := []struct {
		name string
		body string
	}{
		{"missing filename", `{"fileType":"text/plain","size":1}`},
		{"missing fileType", `{"filename":"a.txt","size":1}`},
		{"negative size", `{"filename":"a.txt","fileType":"text/plain","size":-1}`},
		{"malformed json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/files/upload-url", strings.NewReader(tt.body))
			req.Header.Set("Authorization", f.authHeader(t, user))

			rec := f.do(req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetList_EmptyIsArrayNotNull(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	user := &domain.User{ID: bson.NewObjectID(), Email: "u@example.com"}
	f.entries.listEntries = func(bson.ObjectID, string) ([]*domain.Entry, error) {
		return nil, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	req.Header.Set("Authorization", f.authHeader(t, user))

	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestShare_PassesTTLInSeconds(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	user := &domain.User{ID: bson.NewObjectID(), Email: "u@example.com"}

	f.entries.share = func(ownerID bson.ObjectID, entryID string, ttl time.Duration) (*service.ShareLink, error) {
		assert.Equal(t, "abc", entryID)
		assert.Equal(t, 600*time.Second, ttl)
		return &service.ShareLink{URL: "http://localhost:5173/shared/tok"}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/files/abc/share?expiresIn=600", nil)
	req.Header.Set("Authorization", f.authHeader(t, user))

	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestShare_Forbidden(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	user := &domain.User{ID: bson.NewObjectID(), Email: "u@example.com"}
	f.entries.share = func(bson.ObjectID, string, time.Duration) (*service.ShareLink, error) {
		return nil, service.ErrForbidden
	}

	req := httptest.NewRequest(http.MethodGet, "/api/files/abc/share", nil)
	req.Header.Set("Authorization", f.authHeader(t, user))

	rec := f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	user := &domain.User{ID: bson.NewObjectID(), Email: "u@example.com"}

	f.entries.remove = func(ownerID bson.ObjectID, entryID string) error {
		assert.Equal(t, user.ID, ownerID)
		assert.Equal(t, "abc", entryID)
		return nil
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/files/abc", nil)
	req.Header.Set("Authorization", f.authHeader(t, user))

	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Item removed", body["message"])
}

func TestDelete_NotFound(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	user := &domain.User{ID: bson.NewObjectID(), Email: "u@example.com"}
	f.entries.remove = func(bson.ObjectID, string) error { return store.ErrNotFound }

	req := httptest.NewRequest(http.MethodDelete, "/api/files/missing", nil)
	req.Header.Set("Authorization", f.authHeader(t, user))

	rec := f.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
