package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("repository: not found")
	ErrAlreadyExists = errors.New("repository: already exists")
)

// Store is the root data access handle. The sub-repositories it hands out
// all share its *gorm.DB, so repositories obtained from the Store passed to a
// WithTx callback run inside that transaction.
type Store struct {
	db *gorm.DB
}

// New wraps the supplied database handle.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("repository: db is required")
	}
	return &Store{db: db}, nil
}

func (s *Store) Users() *Users             { return &Users{db: s.db} }
func (s *Store) Invitations() *Invitations { return &Invitations{db: s.db} }
func (s *Store) AuditLogs() *AuditLogs     { return &AuditLogs{db: s.db} }

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// IsUniqueViolation detects uniqueness constraint violations across vendors.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAlreadyExists) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate key") ||
		strings.Contains(lower, "duplicate entry")
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func mapCreateError(err error) error {
	if IsUniqueViolation(err) {
		return errors.Join(ErrAlreadyExists, err)
	}
	return err
}
