package auth

import "net/http"

// Register mounts the login and logout endpoints. limit wraps the login
// handler, typically with a per-IP rate limiter; nil leaves it unlimited.
func Register(mux *http.ServeMux, svc Sessions, limit func(http.Handler) http.Handler) {
	var login http.Handler = LoginHandler{Svc: svc}
	if limit != nil {
		login = limit(login)
	}
	mux.Handle("POST /auth/login", login)
	mux.Handle("POST /auth/logout", LogoutHandler{Svc: svc})
}
