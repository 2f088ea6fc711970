package api

import (
	"database/sql"
	"net/http"
)

// Options carries router configuration beyond its database handle.
type Options struct {
	JWTSecret      string
	StartingPoints int
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, opts Options) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: opts.JWTSecret, StartingPoints: opts.StartingPoints}
	itemsHandler := &ItemsHandler{DB: db}
	swapsHandler := &SwapsHandler{DB: db}
	adminHandler := &AdminHandler{DB: db}

	authMW := AuthMiddleware(opts.JWTSecret, db)
	admin := func(h http.HandlerFunc) http.Handler {
		return authMW(RequireAdmin(h))
	}

	// Auth.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Items: browsing is public, mutations require auth.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/featured", itemsHandler.Featured)
	mux.Handle("GET /api/items/user/me", authMW(http.HandlerFunc(itemsHandler.ListMine)))
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("GET /api/items/{id}/images/{imageID}", itemsHandler.GetImage)
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))

	// Swaps.
	mux.Handle("POST /api/swaps/request", authMW(http.HandlerFunc(swapsHandler.Request)))
	mux.Handle("POST /api/swaps/redeem", authMW(http.HandlerFunc(swapsHandler.Redeem)))
	mux.Handle("GET /api/swaps/me", authMW(http.HandlerFunc(swapsHandler.ListMine)))
	mux.Handle("GET /api/swaps/{id}", authMW(http.HandlerFunc(swapsHandler.Get)))
	mux.Handle("PUT /api/swaps/{id}/accept", authMW(http.HandlerFunc(swapsHandler.Accept)))
	mux.Handle("PUT /api/swaps/{id}/reject", authMW(http.HandlerFunc(swapsHandler.Reject)))
	mux.Handle("PUT /api/swaps/{id}/complete", authMW(http.HandlerFunc(swapsHandler.Complete)))
	mux.Handle("DELETE /api/swaps/{id}", authMW(http.HandlerFunc(swapsHandler.Cancel)))

	// Admin moderation.
	mux.Handle("GET /api/admin/pending-items", admin(adminHandler.PendingItems))
	mux.Handle("GET /api/admin/items", admin(adminHandler.Items))
	mux.Handle("GET /api/admin/users", admin(adminHandler.Users))
	mux.Handle("GET /api/admin/swaps", admin(adminHandler.Swaps))
	mux.Handle("GET /api/admin/stats", admin(adminHandler.Stats))
	mux.Handle("GET /api/admin/activity", admin(adminHandler.Activity))
	mux.Handle("PUT /api/admin/items/{id}/approve", admin(adminHandler.ApproveItem))
	mux.Handle("PUT /api/admin/items/{id}/reject", admin(adminHandler.RejectItem))
	mux.Handle("DELETE /api/admin/items/{id}", admin(adminHandler.DeleteItem))
	mux.Handle("PUT /api/admin/users/{id}/ban", admin(adminHandler.BanUser))
	mux.Handle("PUT /api/admin/users/{id}/activate", admin(adminHandler.ActivateUser))
	mux.Handle("PUT /api/admin/users/{id}/points", admin(adminHandler.SetUserPoints))

	return mux
}
