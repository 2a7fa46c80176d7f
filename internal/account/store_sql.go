package account

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/mind-engage/mindengage-tasks/internal/apperr"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(dbh *sql.DB) *SQLStore {
	return &SQLStore{db: dbh}
}

const accountColumns = `id,username,password_hash,role,roll_no,class,points,badges_json,created_at`

func (s *SQLStore) Create(ctx context.Context, a Account) error {
	if err := s.ensureUnique(ctx, a); err != nil {
		return err
	}
	badges, err := json.Marshal(nonNil(a.Badges))
	if err != nil {
		return err
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO users (`+accountColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.Username, a.PasswordHash, string(a.Role), nullString(a.RollNo), a.Class, a.Points, string(badges), a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account %q: %w", a.Username, apperr.ErrConflict)
		}
		return pkgerrors.Wrap(err, "insert user")
	}
	return nil
}

func (s *SQLStore) ensureUnique(ctx context.Context, a Account) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username=$1`, a.Username).Scan(&one)
	if err == nil {
		return fmt.Errorf("username %q: %w", a.Username, apperr.ErrConflict)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return pkgerrors.Wrap(err, "check username")
	}
	if a.RollNo == "" {
		return nil
	}
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE roll_no=$1`, a.RollNo).Scan(&one)
	if err == nil {
		return fmt.Errorf("roll number %q: %w", a.RollNo, apperr.ErrConflict)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return pkgerrors.Wrap(err, "check roll number")
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Account, error) {
	return s.getBy(ctx, "id", id)
}

func (s *SQLStore) GetByUsername(ctx context.Context, username string) (Account, error) {
	return s.getBy(ctx, "username", username)
}

func (s *SQLStore) GetByRollNo(ctx context.Context, rollNo string) (Account, error) {
	return s.getBy(ctx, "roll_no", rollNo)
}

// col is always one of the fixed column names above.
func (s *SQLStore) getBy(ctx context.Context, col, v string) (Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM users WHERE `+col+`=$1`, v)
	var a Account
	var role, badges string
	var rollNo sql.NullString
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &role, &rollNo, &a.Class, &a.Points, &badges, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, fmt.Errorf("account %s=%q: %w", col, v, apperr.ErrNotFound)
		}
		return Account{}, pkgerrors.Wrap(err, "select user")
	}
	a.Role = Role(role)
	a.RollNo = rollNo.String
	if err := json.Unmarshal([]byte(badges), &a.Badges); err != nil {
		a.Badges = []string{}
	}
	return a, nil
}

func (s *SQLStore) SaveLedger(ctx context.Context, id string, points int64, badges []string) error {
	buf, err := json.Marshal(nonNil(badges))
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE users SET points=$1, badges_json=$2 WHERE id=$3`, points, string(buf), id)
	if err != nil {
		return pkgerrors.Wrap(err, "update ledger")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("account %q: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (s *SQLStore) Usernames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if _, done := out[id]; done {
			continue
		}
		var name string
		err := s.db.QueryRowContext(ctx, `SELECT username FROM users WHERE id=$1`, id).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, pkgerrors.Wrap(err, "select username")
		}
		out[id] = name
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nonNil(b []string) []string {
	if b == nil {
		return []string{}
	}
	return b
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key value") // postgres
}
