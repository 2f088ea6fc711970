package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rewearhq/rewear/internal/model"
)

// CreateUser creates a new user account.
func CreateUser(ctx context.Context, db *sql.DB, email, name, passwordHash, role string, points int) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (email, name, password_hash, role, points) VALUES (?, ?, ?, ?, ?)`,
		email, name, passwordHash, role, points,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, role, points, status, created_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Points, &u.Status, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by email.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, role, points, status, created_at
		 FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Points, &u.Status, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// ListUsers returns all users ordered by ID.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, email, name, password_hash, role, points, status, created_at
		 FROM users ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Points, &u.Status, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// AdjustPoints applies a delta to a user's balance and returns the new
// balance. The guard in the UPDATE keeps the debit atomic: a concurrent
// spend cannot slip between the check and the write.
//
// This is the ledger's delta operation, the counterpart to SetUserPoints'
// absolute override. Redeem does not call it because its debit has to
// commit inside the redemption transaction.
func AdjustPoints(ctx context.Context, db *sql.DB, id int64, delta int) (int, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET points = points + ? WHERE id = ? AND points + ? >= 0`,
		delta, id, delta,
	)
	if err != nil {
		return 0, fmt.Errorf("adjusting points: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking points adjustment: %w", err)
	}
	if affected == 0 {
		// Either the user is missing or the balance would go negative.
		u, err := GetUser(ctx, db, id)
		if err != nil {
			return 0, err
		}
		if u == nil {
			return 0, ErrNotFound
		}
		return u.Points, ErrInsufficientPoints
	}

	var balance int
	if err := db.QueryRowContext(ctx, `SELECT points FROM users WHERE id = ?`, id).Scan(&balance); err != nil {
		return 0, fmt.Errorf("reading balance: %w", err)
	}
	return balance, nil
}

// SetUserPoints overwrites a user's balance. This is the administrative
// override, not a ledger transaction; points must be non-negative.
func SetUserPoints(ctx context.Context, db *sql.DB, id int64, points int) error {
	if points < 0 {
		return ErrInvalidState
	}
	result, err := db.ExecContext(ctx,
		`UPDATE users SET points = ? WHERE id = ?`, points, id,
	)
	if err != nil {
		return fmt.Errorf("setting user points: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetUserStatus sets a user's account status (active or banned).
func SetUserStatus(ctx context.Context, db *sql.DB, id int64, status string) error {
	if status != model.UserStatusActive && status != model.UserStatusBanned {
		return ErrInvalidState
	}
	result, err := db.ExecContext(ctx,
		`UPDATE users SET status = ? WHERE id = ?`, status, id,
	)
	if err != nil {
		return fmt.Errorf("setting user status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}
