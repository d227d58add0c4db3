package handlers

import (
	"net/http"

	"github.com/vkotlyarov/skillboard/internal/handlers/middleware"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	skillHandler *SkillHandler,
	noteHandler *NoteHandler,
	authMiddleware func(http.Handler) http.Handler,
	loggerMiddleware func(http.Handler) http.Handler,
) http.Handler {
	withAuth := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}
	withAdmin := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(middleware.RequireAdmin(h))
	}

	authmux := http.NewServeMux()
	authmux.HandleFunc("POST /register", authHandler.Register)
	authmux.HandleFunc("POST /login", authHandler.Login)
	authmux.HandleFunc("POST /refresh", authHandler.Refresh)
	authmux.Handle("POST /logout", withAuth(authHandler.Logout))
	authmux.Handle("POST /change-password", withAuth(authHandler.ChangePassword))

	apimux := http.NewServeMux()
	apimux.Handle("GET /me", withAuth(userHandler.Me))
	apimux.Handle("GET /credits", withAuth(noteHandler.Credits))
	apimux.HandleFunc("GET /feed", noteHandler.Feed)
	apimux.Handle("POST /notes", withAuth(noteHandler.Create))
	apimux.HandleFunc("GET /skills", skillHandler.List)
	apimux.Handle("POST /skills", withAdmin(skillHandler.Create))
	apimux.Handle("GET /admin/users", withAdmin(userHandler.ListUsers))

	root := http.NewServeMux()
	root.Handle("/auth/", http.StripPrefix("/auth", authmux))
	root.Handle("/api/", http.StripPrefix("/api", apimux))

	return chain(root, loggerMiddleware)
}
