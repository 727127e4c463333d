package models

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventboard/utils"
)

type sqlUserRepo struct{ db *sql.DB }

func NewSQLUserRepository(db *sql.DB) UserRepository { return &sqlUserRepo{db} }

// EnsureUsersTable creates the users table on startup if it is missing.
func EnsureUsersTable(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *sqlUserRepo) Create(u *User) error {
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	if u.Role == "" {
		u.Role = RoleUser
	}

	err = r.db.QueryRow(
		`INSERT INTO users(name, email, password, role) VALUES ($1,$2,$3,$4) RETURNING id, created_at`,
		u.Name, u.Email, u.Password, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		// 23505 = unique_violation; concurrent registrations with the same
		// email land here, the constraint is the only arbiter.
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *sqlUserRepo) FindByEmail(email string) (User, error) {
	var u User
	err := r.db.QueryRow(
		`SELECT id, name, email, password, role, created_at FROM users WHERE email=$1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *sqlUserRepo) GetByID(id int64) (User, error) {
	var u User
	err := r.db.QueryRow(
		`SELECT id, name, email, role, created_at FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
