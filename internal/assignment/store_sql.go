package assignment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/mind-engage/mindengage-tasks/internal/apperr"
	"github.com/mind-engage/mindengage-tasks/internal/db"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(dbh *sql.DB) *SQLStore {
	return &SQLStore{db: dbh}
}

func (s *SQLStore) Create(ctx context.Context, a Assignment) error {
	qj, err := json.Marshal(nonNilQuestions(a.Questions()))
	if err != nil {
		return err
	}
	sj, err := json.Marshal(nonNilSteps(a.Steps()))
	if err != nil {
		return err
	}
	rj, err := json.Marshal(nonNilResources(a.Resources))
	if err != nil {
		return err
	}
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO assignments
			(id,kind,title,description,owner_id,questions_json,steps_json,resources_json,created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			a.ID, string(a.Kind()), a.Title, a.Description, a.OwnerID, string(qj), string(sj), string(rj), a.CreatedAt)
		if err != nil {
			return pkgerrors.Wrap(err, "insert assignment")
		}
		for _, r := range a.RollNos() {
			e := a.Roster[r]
			if _, err := tx.ExecContext(ctx, `INSERT INTO roster_entries (assignment_id,roll_no,progress,score,notified)
				VALUES ($1,$2,$3,$4,$5)`, a.ID, e.RollNo, e.Progress, e.Score, boolInt(e.Notified)); err != nil {
				return pkgerrors.Wrapf(err, "insert roster entry %s", e.RollNo)
			}
		}
		return nil
	})
}

func (s *SQLStore) Get(ctx context.Context, id string) (Assignment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,kind,title,description,owner_id,questions_json,steps_json,resources_json,created_at
		FROM assignments WHERE id=$1`, id)
	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Assignment{}, fmt.Errorf("assignment %q: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return Assignment{}, err
	}
	if err := s.loadRoster(ctx, &a); err != nil {
		return Assignment{}, err
	}
	return a, nil
}

func (s *SQLStore) ListByOwner(ctx context.Context, ownerID string) ([]Assignment, error) {
	return s.list(ctx, `SELECT id,kind,title,description,owner_id,questions_json,steps_json,resources_json,created_at
		FROM assignments WHERE owner_id=$1 ORDER BY created_at DESC, id`, ownerID)
}

func (s *SQLStore) ListByRollNo(ctx context.Context, rollNo string) ([]Assignment, error) {
	return s.list(ctx, `SELECT a.id,a.kind,a.title,a.description,a.owner_id,a.questions_json,a.steps_json,a.resources_json,a.created_at
		FROM assignments a JOIN roster_entries r ON r.assignment_id=a.id
		WHERE r.roll_no=$1 ORDER BY a.created_at DESC, a.id`, rollNo)
}

func (s *SQLStore) list(ctx context.Context, q string, arg string) ([]Assignment, error) {
	rows, err := s.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list assignments")
	}
	out := []Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	// rosters are loaded after the cursor is closed; sqlite runs on one connection
	for i := range out {
		if err := s.loadRoster(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLStore) SaveRosterEntry(ctx context.Context, assignmentID string, e RosterEntry) error {
	res, err := s.db.ExecContext(ctx, `UPDATE roster_entries SET progress=$1, score=$2, notified=$3
		WHERE assignment_id=$4 AND roll_no=$5`, e.Progress, e.Score, boolInt(e.Notified), assignmentID, e.RollNo)
	if err != nil {
		return pkgerrors.Wrap(err, "update roster entry")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("roster entry %q on %q: %w", e.RollNo, assignmentID, apperr.ErrNotFound)
	}
	return nil
}

func (s *SQLStore) loadRoster(ctx context.Context, a *Assignment) error {
	rows, err := s.db.QueryContext(ctx, `SELECT roll_no,progress,score,notified FROM roster_entries WHERE assignment_id=$1`, a.ID)
	if err != nil {
		return pkgerrors.Wrap(err, "select roster")
	}
	defer rows.Close()
	a.Roster = map[string]RosterEntry{}
	for rows.Next() {
		var e RosterEntry
		var notified int
		if err := rows.Scan(&e.RollNo, &e.Progress, &e.Score, &notified); err != nil {
			return err
		}
		e.Notified = notified != 0
		a.Roster[e.RollNo] = e
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAssignment(sc scanner) (Assignment, error) {
	var a Assignment
	var kind, qj, sj, rj string
	if err := sc.Scan(&a.ID, &kind, &a.Title, &a.Description, &a.OwnerID, &qj, &sj, &rj, &a.CreatedAt); err != nil {
		return Assignment{}, err
	}
	var qs []Question
	var steps []Step
	if err := json.Unmarshal([]byte(qj), &qs); err != nil {
		return Assignment{}, pkgerrors.Wrap(err, "decode questions")
	}
	if err := json.Unmarshal([]byte(sj), &steps); err != nil {
		return Assignment{}, pkgerrors.Wrap(err, "decode steps")
	}
	if err := json.Unmarshal([]byte(rj), &a.Resources); err != nil {
		return Assignment{}, pkgerrors.Wrap(err, "decode resources")
	}
	p, err := NewPayload(Kind(kind), qs, steps)
	if err != nil {
		return Assignment{}, err
	}
	a.Payload = p
	return a, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNilQuestions(q []Question) []Question {
	if q == nil {
		return []Question{}
	}
	return q
}

func nonNilSteps(s []Step) []Step {
	if s == nil {
		return []Step{}
	}
	return s
}
