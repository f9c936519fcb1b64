package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"shipgate/internal/backend"
	"shipgate/internal/model"
	"shipgate/internal/mw"
	"shipgate/internal/session"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func issueToken(secret, userID, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	if role != "" {
		claims["role"] = role
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func signIn(w http.ResponseWriter, r *http.Request, sessions *session.Store, secret string) {
	user, err := sessions.Check(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	tokenString, err := issueToken(secret, user.ID, "")
	if err != nil {
		http.Error(w, "token generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Authorization", "Bearer "+tokenString)
	writeJSON(w, http.StatusOK, map[string]any{"status": true, "user": user})
}

func LoginHandler(b *backend.Client, sessions *session.Store, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" {
			http.Error(w, "email and password required", http.StatusBadRequest)
			return
		}

		if err := b.Login(r.Context(), backend.Credentials(req)); err != nil {
			writeError(w, err)
			return
		}
		signIn(w, r, sessions, secret)
	}
}

func SignupHandler(b *backend.Client, sessions *session.Store, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" {
			http.Error(w, "email and password required", http.StatusBadRequest)
			return
		}

		if err := b.Signup(r.Context(), backend.Credentials(req)); err != nil {
			writeError(w, err)
			return
		}
		signIn(w, r, sessions, secret)
	}
}

func LogoutHandler(sessions *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Logout(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": true})
	}
}

// ProfileHandler serves the cached session, falling back to a backend check
// when nothing is cached yet.
func ProfileHandler(sessions *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := sessions.User()
		if user == nil {
			var err error
			user, err = sessions.Check(r.Context())
			if err != nil {
				writeError(w, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]*model.User{"user": user})
	}
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLoginHandler gates the admin views behind a password checked against
// the bcrypt hash from config.
func AdminLoginHandler(passwordHash, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if passwordHash == "" {
			http.Error(w, "admin access not configured", http.StatusForbidden)
			return
		}

		var req adminLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
			http.Error(w, "invalid password", http.StatusUnauthorized)
			return
		}

		tokenString, err := issueToken(secret, "admin", mw.RoleAdmin)
		if err != nil {
			http.Error(w, "token generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Authorization", "Bearer "+tokenString)
		writeJSON(w, http.StatusOK, map[string]any{"status": true})
	}
}
