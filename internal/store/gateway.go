// Package store is the entity access gateway: every read and write of users,
// links, comments and votes goes through the Gateway interface.
package store

import (
	"context"
	"errors"
	"fmt"

	"linkboard/internal/models"
)

// ErrNotFound is returned by single-entity lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// Gateway is implemented by PostgresStore and MemoryStore.
type Gateway interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateLink(ctx context.Context, link *models.Link) error
	FindLinkByID(ctx context.Context, id uint) (*models.Link, error)
	FindLinks(ctx context.Context, q LinkQuery) ([]models.Link, error)
	FindLinksByUser(ctx context.Context, userID uint) ([]models.Link, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	FindCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	FindComments(ctx context.Context) ([]models.Comment, error)
	FindCommentsByLink(ctx context.Context, linkID uint) ([]models.Comment, error)

	CreateVote(ctx context.Context, vote *models.Vote) error
	FindVote(ctx context.Context, userID, linkID uint) (*models.Vote, error)
	FindVotesByLink(ctx context.Context, linkID uint) ([]models.Vote, error)
	FindVotesByUser(ctx context.Context, userID uint) ([]models.Vote, error)
	CountVotesByLink(ctx context.Context, linkID uint) (int64, error)

	Ping(ctx context.Context) error
}

// LinkOrderField names a column links can be ordered by.
type LinkOrderField string

const (
	OrderByDescription LinkOrderField = "description"
	OrderByURL         LinkOrderField = "url"
	OrderByCreatedAt   LinkOrderField = "createdAt"
)

// Valid reports whether f is one of the supported order fields.
func (f LinkOrderField) Valid() bool {
	switch f {
	case OrderByDescription, OrderByURL, OrderByCreatedAt:
		return true
	}
	return false
}

type LinkOrder struct {
	Field LinkOrderField
	Desc  bool
}

// LinkQuery filters and pages a link listing. Needle is matched as a
// substring of the description or the url; empty matches everything.
type LinkQuery struct {
	Needle  string
	Skip    int
	Take    int
	OrderBy *LinkOrder
}

// Violation tags a storage failure caused by an integrity rule.
type Violation int

const (
	ViolationNone Violation = iota
	ViolationUnique
	ViolationForeignKey
)

func (v Violation) String() string {
	switch v {
	case ViolationUnique:
		return "unique"
	case ViolationForeignKey:
		return "foreign key"
	default:
		return "none"
	}
}

// ConstraintError is returned by create operations rejected by an integrity rule.
type ConstraintError struct {
	Kind       Violation
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s constraint %q violated: %v", e.Kind, e.Constraint, e.Err)
	}
	return fmt.Sprintf("%s constraint violated: %v", e.Kind, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// ViolationOf returns the violation tag carried by err, or ViolationNone when
// err is nil or is not a constraint rejection.
func ViolationOf(err error) Violation {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ViolationNone
}
