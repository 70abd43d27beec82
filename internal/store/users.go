package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mynd-backend/internal/apperr"
	"mynd-backend/internal/db"
	"mynd-backend/internal/models"
)

// CreateUser registers an account with an empty profile and default
// settings. A taken email is a conflict.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}

	err := s.InTx(ctx, func(tx *Store) error {
		// users.email is UNIQUE; a concurrent registration loses here
		if _, err := tx.exec(ctx, `
			INSERT INTO users (id, email, password_hash, created_at)
			VALUES (?, ?, ?, ?)
		`, u.ID, u.Email, u.PasswordHash, formatTime(u.CreatedAt)); err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("email %s already registered: %w", email, apperr.ErrConflict)
			}
			return fmt.Errorf("insert user: %w", err)
		}
		if _, err := tx.UpsertProfile(ctx, u.ID, models.ProfilePatch{}); err != nil {
			return err
		}
		_, err := tx.GetSettings(ctx, u.ID)
		return err
	})
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) userBy(ctx context.Context, column, value string) (models.User, error) {
	var (
		u         models.User
		createdAt string
	)
	err := s.queryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE `+column+` = ?
	`, value).Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperr.NotFoundf("user")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.User{}, fmt.Errorf("user created_at: %w", err)
	}
	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.userBy(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) UserByID(ctx context.Context, id string) (models.User, error) {
	return s.userBy(ctx, "id", id)
}

// DeleteAccount removes the user and everything they own.
func (s *Store) DeleteAccount(ctx context.Context, userID string) error {
	return s.InTx(ctx, func(tx *Store) error {
		for _, stmt := range []string{
			`DELETE FROM tasks WHERE user_id = ?`,
			`DELETE FROM learning_data WHERE user_id = ?`,
			`DELETE FROM user_settings WHERE user_id = ?`,
			`DELETE FROM profiles WHERE user_id = ?`,
			`DELETE FROM analytics_events WHERE user_id = ?`,
		} {
			if _, err := tx.exec(ctx, stmt, userID); err != nil {
				return fmt.Errorf("delete account: %w", err)
			}
		}
		res, err := tx.exec(ctx, `DELETE FROM users WHERE id = ?`, userID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFoundf("user %s", userID)
		}
		return nil
	})
}

func (s *Store) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	var (
		p                                     models.Profile
		first, last, avatar, bio, constraints sql.NullString
		university, major, year               sql.NullString
	)
	err := s.queryRow(ctx, `
		SELECT user_id, first_name, last_name, avatar_url, bio, constraints,
			university, major, year_of_study
		FROM profiles
		WHERE user_id = ?
	`, userID).Scan(&p.UserID, &first, &last, &avatar, &bio, &constraints, &university, &major, &year)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, apperr.NotFoundf("profile")
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	p.FirstName = stringPtr(first)
	p.LastName = stringPtr(last)
	p.AvatarURL = stringPtr(avatar)
	p.Bio = stringPtr(bio)
	p.Constraints = stringPtr(constraints)
	p.University = stringPtr(university)
	p.Major = stringPtr(major)
	p.YearOfStudy = stringPtr(year)
	return p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, userID string, patch models.ProfilePatch) (models.Profile, error) {
	var out models.Profile
	err := s.InTx(ctx, func(tx *Store) error {
		p, err := tx.GetProfile(ctx, userID)
		if errors.Is(err, apperr.ErrNotFound) {
			p = models.Profile{UserID: userID}
		} else if err != nil {
			return err
		}
		patch.ApplyTo(&p)

		_, err = tx.exec(ctx, `
			INSERT INTO profiles (user_id, first_name, last_name, avatar_url, bio, constraints,
				university, major, year_of_study, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				first_name = excluded.first_name,
				last_name = excluded.last_name,
				avatar_url = excluded.avatar_url,
				bio = excluded.bio,
				constraints = excluded.constraints,
				university = excluded.university,
				major = excluded.major,
				year_of_study = excluded.year_of_study,
				updated_at = excluded.updated_at
		`, userID, nullString(p.FirstName), nullString(p.LastName), nullString(p.AvatarURL),
			nullString(p.Bio), nullString(p.Constraints), nullString(p.University),
			nullString(p.Major), nullString(p.YearOfStudy), tx.stamp())
		if err != nil {
			return fmt.Errorf("upsert profile: %w", err)
		}
		out = p
		return nil
	})
	return out, err
}
