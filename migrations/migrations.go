package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"user-directory-service/internal/repository"
)

var createUsersTable = map[repository.Dialect]string{
	repository.DialectSQLite: `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL
		);
	`,
	repository.DialectMySQL: `
		CREATE TABLE IF NOT EXISTS users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			password VARCHAR(255) NOT NULL,
			UNIQUE INDEX email_idx (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`,
}

// retryDelay is the pause between attempts.
var retryDelay = 1 * time.Second

// AutoMigrateUsers creates the users table if it does not exist, retrying up
// to retries more times while the datastore is still coming up.
func AutoMigrateUsers(ctx context.Context, retries int, dialect repository.Dialect, db *sql.DB) error {
	query, ok := createUsersTable[dialect]
	if !ok {
		return fmt.Errorf("no users schema for dialect %q", dialect)
	}

	_, err := db.ExecContext(ctx, query)
	for i := 0; err != nil && i < retries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
		_, err = db.ExecContext(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}
