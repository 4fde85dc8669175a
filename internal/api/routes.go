package api

import (
	"log"
	"net/http"
)

// RegisterRoutes sets up all the application's routes on the given ServeMux.
// Method-qualified patterns keep the routing in the standard library.
func RegisterRoutes(mux *http.ServeMux, userHandler *UserHandler, entryHandler *EntryHandler, auth *AuthMiddleware, logger *log.Logger) {
	// --- Auth Routes (public) ---
	mux.HandleFunc("POST /api/auth/register", userHandler.Register)
	mux.HandleFunc("PUT /api/auth/activate/{token}", userHandler.Activate)
	mux.HandleFunc("POST /api/auth/login", userHandler.Login)
	mux.HandleFunc("POST /api/auth/forgotpassword", userHandler.ForgotPassword)
	mux.HandleFunc("PUT /api/auth/resetpassword/{token}", userHandler.ResetPassword)

	// --- File Routes ---
	// The shared-folder route is public: the capability token in the path is
	// the entire authorization. Everything else requires a session.
	mux.HandleFunc("GET /api/files/shared/{token}", entryHandler.GetSharedFolder)

	mux.Handle("POST /api/files/upload-url", auth.RequireAuth(http.HandlerFunc(entryHandler.GetUploadURL)))
	mux.Handle("POST /api/files/folder", auth.RequireAuth(http.HandlerFunc(entryHandler.CreateFolder)))
	mux.Handle("GET /api/files", auth.RequireAuth(http.HandlerFunc(entryHandler.GetList)))
	mux.Handle("GET /api/files/{id}/share", auth.RequireAuth(http.HandlerFunc(entryHandler.Share)))
	mux.Handle("DELETE /api/files/{id}", auth.RequireAuth(http.HandlerFunc(entryHandler.Delete)))

	logger.Println("Registered routes")
}
