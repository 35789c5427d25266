package models

// User represents a registered account.
// It maps to the `users` table in SQLite. PasswordHash holds a bcrypt hash,
// never the raw password, and is excluded from JSON output.
type User struct {
	ID           int64  `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password_hash" json:"-"`
	CreatedAt    string `db:"created_at" json:"created_at"`
}
