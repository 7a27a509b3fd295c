package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchday-preview/internal/domain/user"
)

var (
	staffRoles = []user.Role{user.RoleAdmin, user.RoleKTV}
	adminRoles = []user.Role{user.RoleAdmin}
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/auth/login", handler.Login)
	mux.HandleFunc("GET /v1/articles", handler.ListArticles)
	mux.HandleFunc("GET /v1/articles/{articleID}", handler.GetArticle)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerStaffRoutes(mux, handler, verifier)
	registerAdminRoutes(mux, handler, verifier)
}

func registerStaffRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	staff := func(fn http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, fn, staffRoles...)
	}

	mux.Handle("GET /v1/auth/me", staff(handler.Me))
	mux.Handle("GET /v1/dashboard", staff(handler.GetDashboard))
	mux.Handle("GET /v1/leagues", staff(handler.ListLeagues))
	mux.Handle("GET /v1/leagues/{leagueID}", staff(handler.GetLeague))
	mux.Handle("GET /v1/matches", staff(handler.ListMatches))
	mux.Handle("GET /v1/matches/{matchID}", staff(handler.GetMatch))
	mux.Handle("POST /v1/matches/{matchID}/analyze", staff(handler.TriggerAnalysis))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	admin := func(fn http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, fn, adminRoles...)
	}

	mux.Handle("POST /v1/leagues", admin(handler.CreateLeague))
	mux.Handle("PUT /v1/leagues/{leagueID}", admin(handler.UpdateLeague))
	mux.Handle("DELETE /v1/leagues/{leagueID}", admin(handler.DeleteLeague))

	mux.Handle("POST /v1/matches", admin(handler.CreateMatch))
	mux.Handle("PUT /v1/matches/{matchID}", admin(handler.UpdateMatch))
	mux.Handle("DELETE /v1/matches/{matchID}", admin(handler.DeleteMatch))
	mux.Handle("PUT /v1/matches/{matchID}/publication", admin(handler.RecordPublication))
	mux.Handle("POST /v1/matches/{matchID}/analysis/reset", admin(handler.ResetAnalysis))
	mux.Handle("POST /v1/matches/{matchID}/article", admin(handler.SyncMatchArticle))
	mux.Handle("POST /v1/articles/sync", admin(handler.SyncAllArticles))

	mux.Handle("GET /v1/users", admin(handler.ListUsers))
	mux.Handle("GET /v1/users/{userID}", admin(handler.GetUser))
	mux.Handle("POST /v1/users", admin(handler.CreateUser))
	mux.Handle("PUT /v1/users/{userID}", admin(handler.UpdateUser))
	mux.Handle("DELETE /v1/users/{userID}", admin(handler.DeleteUser))
}

func registerCallbackRoutes(mux *http.ServeMux, handler *Handler, apiKey string) {
	mux.Handle("POST /v1/matches/{matchID}/analysis-callback", RequireAPIKey(apiKey, http.HandlerFunc(handler.AnalysisCallback)))
	mux.Handle("POST /v1/matches/{matchID}/analysis-callback/failure", RequireAPIKey(apiKey, http.HandlerFunc(handler.AnalysisFailureCallback)))
}
