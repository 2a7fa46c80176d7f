package assignment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-tasks/internal/account"
	"github.com/mind-engage/mindengage-tasks/internal/apperr"
	"github.com/mind-engage/mindengage-tasks/internal/grading"
	"github.com/mind-engage/mindengage-tasks/internal/ledger"
	syncx "github.com/mind-engage/mindengage-tasks/internal/sync"
)

// Uploader stores a file and returns a publicly fetchable URL.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

// EventAppender records graded submissions.
type EventAppender interface {
	Append(ctx context.Context, e syncx.Event) error
}

type Service struct {
	Store    Store
	Accounts account.Store
	Uploader Uploader // attachments are rejected without one
	Grader   grading.Grader
	Events   EventAppender // optional
	Now      func() time.Time
}

func NewService(store Store, accounts account.Store, up Uploader) *Service {
	return &Service{
		Store:    store,
		Accounts: accounts,
		Uploader: up,
		Grader:   grading.NewDefaultGrader(),
		Now:      time.Now,
	}
}

// SubmitResult is what a student gets back from one submission.
type SubmitResult struct {
	Assignment Assignment    `json:"assignment"`
	Entry      RosterEntry   `json:"entry"`
	Tier       grading.Tier  `json:"tier"`
	Feedback   string        `json:"feedback"`
	Ledger     ledger.Change `json:"ledger"`
	Points     int64         `json:"points"`
	Badges     []string      `json:"badges"`
}

// Create validates in, uploads its attachment if any, and persists the
// assignment with one fresh roster entry per roll number.
func (s *Service) Create(ctx context.Context, p account.Principal, in CreateInput) (Assignment, error) {
	if p.Role != account.RoleTeacher {
		return Assignment{}, apperr.ErrForbidden
	}
	if err := in.Validate(); err != nil {
		return Assignment{}, err
	}

	if in.Attachment != nil {
		if s.Uploader == nil {
			return Assignment{}, apperr.Collaborator("upload pdf", errors.New("object storage not configured"))
		}
		url, err := s.Uploader.Upload(ctx, in.Attachment.Filename, in.Attachment.Body)
		if err != nil {
			log.Printf("assignment: pdf upload failed: %v", err)
			return Assignment{}, apperr.Collaborator("upload pdf", err)
		}
		log.Printf("assignment: pdf uploaded: %s", url)
		in.Resources = append(in.Resources, ResourceInput{Title: in.Attachment.Filename, URL: url, Type: MediaTypePDF})
	}

	a, err := in.build(uuid.NewString(), p.ID, s.Now().Unix())
	if err != nil {
		return Assignment{}, err
	}
	if err := s.Store.Create(ctx, a); err != nil {
		return Assignment{}, err
	}
	log.Printf("assignment: created %s (%s) with %d students", a.ID, a.Kind(), len(a.Roster))
	return a, nil
}

func (s *Service) ListForTeacher(ctx context.Context, p account.Principal) ([]Assignment, error) {
	if p.Role != account.RoleTeacher {
		return nil, apperr.ErrForbidden
	}
	return s.Store.ListByOwner(ctx, p.ID)
}

// ListForStudent returns the student views of every assignment the caller
// is rostered on, with owner usernames resolved.
func (s *Service) ListForStudent(ctx context.Context, p account.Principal) ([]Assignment, error) {
	acct, err := s.student(ctx, p)
	if err != nil {
		return nil, err
	}
	as, err := s.Store.ListByRollNo(ctx, acct.RollNo)
	if err != nil {
		return nil, err
	}
	owners := make([]string, 0, len(as))
	for _, a := range as {
		owners = append(owners, a.OwnerID)
	}
	names, err := s.Accounts.Usernames(ctx, owners)
	if err != nil {
		return nil, err
	}
	out := make([]Assignment, len(as))
	for i, a := range as {
		a.OwnerName = names[a.OwnerID]
		out[i] = a.StudentView(acct.RollNo)
	}
	return out, nil
}

// Get returns the owner's full view or a rostered student's view.
func (s *Service) Get(ctx context.Context, p account.Principal, id string) (Assignment, error) {
	a, err := s.Store.Get(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	switch p.Role {
	case account.RoleTeacher:
		if a.OwnerID != p.ID {
			return Assignment{}, apperr.ErrForbidden
		}
		return a, nil
	case account.RoleStudent:
		acct, err := s.student(ctx, p)
		if err != nil {
			return Assignment{}, err
		}
		if _, ok := a.Roster[acct.RollNo]; !ok {
			return Assignment{}, apperr.ErrForbidden
		}
		return a.StudentView(acct.RollNo), nil
	}
	return Assignment{}, apperr.ErrForbidden
}

// Submit grades answers for the calling student and then updates the
// account ledger. The two writes are not atomic: if the ledger write fails
// the roster entry stays updated and the error is returned.
func (s *Service) Submit(ctx context.Context, p account.Principal, id string, answers grading.Answers) (SubmitResult, error) {
	acct, err := s.student(ctx, p)
	if err != nil {
		return SubmitResult{}, err
	}
	a, err := s.Store.Get(ctx, id)
	if err != nil {
		return SubmitResult{}, err
	}
	entry, ok := a.Roster[acct.RollNo]
	if !ok {
		return SubmitResult{}, fmt.Errorf("not assigned to this assignment: %w", apperr.ErrForbidden)
	}

	res, err := s.Grader.Grade(a.GradingTask(), entry.Standing(), answers)
	if err != nil {
		return SubmitResult{}, err
	}
	entry = entry.WithStanding(res.Standing)
	if err := s.Store.SaveRosterEntry(ctx, a.ID, entry); err != nil {
		return SubmitResult{}, err
	}
	a.Roster[entry.RollNo] = entry
	s.recordEvent(ctx, a, entry, res)

	ch, err := ledger.Record(ctx, s.Accounts, &acct, ledger.Outcome{AssignmentTitle: a.Title, Score: entry.Score})
	if err != nil {
		log.Printf("assignment: ledger write failed after roster update (assignment=%s roll=%s): %v", a.ID, entry.RollNo, err)
		return SubmitResult{}, fmt.Errorf("update ledger: %w", err)
	}
	log.Printf("assignment: graded %s roll=%s progress=%.2f score=%d", a.ID, entry.RollNo, entry.Progress, entry.Score)

	return SubmitResult{
		Assignment: a.StudentView(acct.RollNo),
		Entry:      entry,
		Tier:       res.Tier,
		Feedback:   res.Tier.Message(),
		Ledger:     ch,
		Points:     acct.Points,
		Badges:     acct.Badges,
	}, nil
}

// student resolves p to a student account with a roll number.
func (s *Service) student(ctx context.Context, p account.Principal) (account.Account, error) {
	if p.Role != account.RoleStudent {
		return account.Account{}, apperr.ErrForbidden
	}
	acct, err := s.Accounts.Get(ctx, p.ID)
	if err != nil {
		return account.Account{}, err
	}
	if acct.Role != account.RoleStudent || acct.RollNo == "" {
		return account.Account{}, fmt.Errorf("user roll number not found: %w", apperr.ErrForbidden)
	}
	return acct, nil
}

func (s *Service) recordEvent(ctx context.Context, a Assignment, e RosterEntry, res grading.Result) {
	if s.Events == nil {
		return
	}
	ev, err := syncx.NewEvent(syncx.TypeSubmissionGraded, a.ID+"/"+e.RollNo, map[string]any{
		"progress": e.Progress,
		"score":    e.Score,
		"tier":     res.Tier,
		"answered": res.Answered,
		"correct":  res.Correct,
	})
	if err == nil {
		err = s.Events.Append(ctx, ev)
	}
	if err != nil {
		log.Printf("assignment: event append failed: %v", err)
	}
}
