package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"user-directory-service/internal/common"
	"user-directory-service/internal/entity"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// withConn runs fn on a connection reserved for this call only and hands it
// back to the pool on every exit path.
func (r *UserRepository) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]entity.User, error) {
	query := `SELECT id, name, email FROM users ORDER BY id`
	return r.queryUsers(ctx, query)
}

// SearchUsersByName matches name as a substring using the datastore's LIKE
// semantics, so case sensitivity follows the column collation.
func (r *UserRepository) SearchUsersByName(ctx context.Context, name string) ([]entity.User, error) {
	query := `SELECT id, name, email FROM users WHERE name LIKE ? ORDER BY id`
	return r.queryUsers(ctx, query, "%"+name+"%")
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]entity.User, error) {
	users := []entity.User{}
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var user entity.User
			if err := rows.Scan(&user.ID, &user.Name, &user.Email); err != nil {
				return err
			}
			users = append(users, user)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}

	return users, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (*entity.User, error) {
	user := &entity.User{}
	query := `SELECT id, name, email FROM users WHERE id = ?`
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Name, &user.Email)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}

	return user, nil
}

// GetUserByEmail is the only read that loads the password hash.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	user := &entity.User{}
	query := `SELECT id, name, email, password FROM users WHERE email = ?`
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Name, &user.Email, &user.Password)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return user, nil
}

// CreateUser inserts user, whose Password must already be hashed, and sets
// its ID.
func (r *UserRepository) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `INSERT INTO users (name, email, password) VALUES (?, ?, ?)`
	var res sql.Result
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		res, err = conn.ExecContext(ctx, query, user.Name, user.Email, user.Password)
		return err
	})
	if isUniqueViolation(err) {
		return nil, common.ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	user.ID = int(id)
	return user, nil
}

// UpdateUser rewrites name and email. The password column is never touched.
func (r *UserRepository) UpdateUser(ctx context.Context, user *entity.User) error {
	query := `UPDATE users SET name = ?, email = ? WHERE id = ?`
	var res sql.Result
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		res, err = conn.ExecContext(ctx, query, user.Name, user.Email, user.ID)
		return err
	})
	if isUniqueViolation(err) {
		return common.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}

	return checkAffected(res, user.ID)
}

func (r *UserRepository) DeleteUser(ctx context.Context, id int) error {
	query := `DELETE FROM users WHERE id = ?`
	var res sql.Result
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		res, err = conn.ExecContext(ctx, query, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	return checkAffected(res, id)
}

func checkAffected(res sql.Result, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for user %d: %w", id, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
