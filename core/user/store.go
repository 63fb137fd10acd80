package user

import (
	"context"
	"fmt"
	"time"

	"github.com/irsalhamdi/devcamper/database"
	"github.com/irsalhamdi/devcamper/query"
	"github.com/jmoiron/sqlx"
)

var Schema = query.Schema{
	Table: "users",
	Key:   "user_id",
	Fields: map[string]query.Field{
		"name":      {Column: "name", Kind: query.String},
		"email":     {Column: "email", Kind: query.String},
		"role":      {Column: "role", Kind: query.String},
		"createdAt": {Column: "created_at", Kind: query.Time},
	},
}

func Create(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	INSERT INTO users
		(user_id, name, email, role, password_hash, created_at)
	VALUES
		(:user_id, :name, :email, :role, :password_hash, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, u); err != nil {
		return database.Error(err)
	}
	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	UPDATE users SET
		name = :name,
		email = :email,
		role = :role,
		password_hash = :password_hash,
		reset_password_token = :reset_password_token,
		reset_password_expire = :reset_password_expire
	WHERE user_id = :user_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, u); err != nil {
		return database.Error(err)
	}
	return nil
}

// SetResetToken stores a hashed reset token without touching the rest of the
// user.
func SetResetToken(ctx context.Context, db sqlx.ExtContext, id, tokenHash string, expire time.Time) error {
	const q = `
	UPDATE users SET
		reset_password_token = $2,
		reset_password_expire = $3
	WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, id, tokenHash, expire); err != nil {
		return fmt.Errorf("storing reset token of user[%s]: %w", id, err)
	}
	return nil
}

// ClearResetToken drops the reset token of a user if it is still tokenHash.
// A newer token, or one already used, is left alone.
func ClearResetToken(ctx context.Context, db sqlx.ExtContext, id, tokenHash string) error {
	const q = `
	UPDATE users SET
		reset_password_token = NULL,
		reset_password_expire = NULL
	WHERE user_id = $1 AND reset_password_token = $2`

	if _, err := db.ExecContext(ctx, q, id, tokenHash); err != nil {
		return fmt.Errorf("clearing reset token of user[%s]: %w", id, err)
	}
	return nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM users WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("deleting user[%s]: %w", id, err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (User, error) {
	const q = `SELECT * FROM users WHERE user_id = $1`

	var u User
	if err := sqlx.GetContext(ctx, db, &u, q, id); err != nil {
		return User{}, database.Error(err)
	}
	return u, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	const q = `SELECT * FROM users WHERE email = $1`

	var u User
	if err := sqlx.GetContext(ctx, db, &u, q, email); err != nil {
		return User{}, database.Error(err)
	}
	return u, nil
}

// FetchByResetToken finds the user holding the hashed reset token, provided
// it has not expired at now.
func FetchByResetToken(ctx context.Context, db sqlx.ExtContext, tokenHash string, now time.Time) (User, error) {
	const q = `
	SELECT * FROM users
	WHERE reset_password_token = $1 AND reset_password_expire > $2`

	var u User
	if err := sqlx.GetContext(ctx, db, &u, q, tokenHash, now); err != nil {
		return User{}, database.Error(err)
	}
	return u, nil
}

func Query(ctx context.Context, db sqlx.ExtContext, q query.Query) ([]User, int, error) {
	return query.Find[User](ctx, db, Schema, q)
}
