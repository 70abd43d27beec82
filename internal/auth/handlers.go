package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"mynd-backend/internal/apperr"
	"mynd-backend/internal/httpx"
	"mynd-backend/internal/models"
)

// Accounts is the slice of the store the auth handlers use.
type Accounts interface {
	CreateUser(ctx context.Context, email, passwordHash string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id string) (models.User, error)
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	DeleteAccount(ctx context.Context, userID string) error
}

// Tokens issues session tokens.
type Tokens struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func (t Tokens) Issue(userID string) (string, error) {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	return GenerateToken(t.Secret, userID, t.TTL, now())
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type userView struct {
	ID      string          `json:"id"`
	Email   string          `json:"email"`
	Profile *models.Profile `json:"profile"`
}

func profileOrNil(ctx context.Context, st Accounts, userID string) (*models.Profile, error) {
	p, err := st.GetProfile(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func RegisterHandler(st Accounts, tokens Tokens, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		if err := httpx.Decode(r, &body); err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		body.Email = strings.TrimSpace(body.Email)
		if body.Email == "" || body.Password == "" {
			httpx.Error(w, r, log, apperr.Invalid("", "email and password are required"))
			return
		}
		if len(body.Password) < minPasswordLen {
			httpx.Error(w, r, log, apperr.Invalid("password", "must be at least %d characters", minPasswordLen))
			return
		}

		hash, err := HashPassword(body.Password)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		u, err := st.CreateUser(r.Context(), body.Email, hash)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		token, err := tokens.Issue(u.ID)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		profile, _ := profileOrNil(r.Context(), st, u.ID)

		log.Info("user registered", zap.String("user_id", u.ID))
		httpx.JSON(w, http.StatusCreated, authResponse{
			Token: token,
			User:  userView{ID: u.ID, Email: u.Email, Profile: profile},
		})
	}
}

func LoginHandler(st Accounts, tokens Tokens, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		if err := httpx.Decode(r, &body); err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		if strings.TrimSpace(body.Email) == "" || body.Password == "" {
			httpx.Error(w, r, log, apperr.Invalid("", "email and password are required"))
			return
		}

		u, err := st.UserByEmail(r.Context(), body.Email)
		if errors.Is(err, apperr.ErrNotFound) {
			httpx.JSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid email or password"})
			return
		}
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		if CheckPassword(u.PasswordHash, body.Password) != nil {
			httpx.JSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid email or password"})
			return
		}

		token, err := tokens.Issue(u.ID)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		profile, err := profileOrNil(r.Context(), st, u.ID)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		httpx.JSON(w, http.StatusOK, authResponse{
			Token: token,
			User:  userView{ID: u.ID, Email: u.Email, Profile: profile},
		})
	}
}

func MeHandler(st Accounts, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, r, log, apperr.ErrUnauthorized)
			return
		}

		u, err := st.UserByID(r.Context(), uid)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		profile, err := profileOrNil(r.Context(), st, uid)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		httpx.JSON(w, http.StatusOK, userView{ID: u.ID, Email: u.Email, Profile: profile})
	}
}
