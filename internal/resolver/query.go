package resolver

import (
	"context"
	"errors"
	"strings"

	"linkboard/internal/models"
	"linkboard/internal/store"
	"linkboard/internal/utils"
)

const (
	defaultTake = 30
	minTake     = 1
	maxTake     = 50
)

// LinkOrderByInput selects the ordering of a link listing. Field is one of
// description, url or createdAt; Direction is asc (the default) or desc.
type LinkOrderByInput struct {
	Field     string
	Direction string
}

// AllLinkArgs are the arguments of the link listing. Nil means omitted.
type AllLinkArgs struct {
	FilterNeedle *string
	Skip         *int
	Take         *int
	OrderBy      *LinkOrderByInput
}

func applyTakeConstraints(take *int) (int, error) {
	if take == nil {
		return defaultTake, nil
	}
	if *take < minTake || *take > maxTake {
		return 0, newError(ErrOutOfRange,
			"'take' argument value '%d' is outside the valid range of '%d' to '%d'.", *take, minTake, maxTake)
	}
	return *take, nil
}

func applySkipConstraints(skip *int) (int, error) {
	if skip == nil {
		return 0, nil
	}
	if *skip < 0 {
		return 0, newError(ErrOutOfRange, "'skip' argument value '%d' must not be negative.", *skip)
	}
	return *skip, nil
}

func parseOrderBy(in *LinkOrderByInput) (*store.LinkOrder, error) {
	if in == nil {
		return nil, nil
	}
	field := store.LinkOrderField(in.Field)
	if !field.Valid() {
		return nil, newError(ErrInvalidArgument, "cannot order links by '%s'", in.Field)
	}
	order := &store.LinkOrder{Field: field}
	switch strings.ToLower(in.Direction) {
	case "", "asc":
	case "desc":
		order.Desc = true
	default:
		return nil, newError(ErrInvalidArgument, "unknown sort direction '%s'", in.Direction)
	}
	return order, nil
}

// AllLink lists links. All arguments are validated before the store is touched.
func (q *QueryResolver) AllLink(ctx context.Context, args AllLinkArgs) ([]models.Link, error) {
	take, err := applyTakeConstraints(args.Take)
	if err != nil {
		return nil, err
	}
	skip, err := applySkipConstraints(args.Skip)
	if err != nil {
		return nil, err
	}
	order, err := parseOrderBy(args.OrderBy)
	if err != nil {
		return nil, err
	}

	query := store.LinkQuery{Skip: skip, Take: take, OrderBy: order}
	if args.FilterNeedle != nil {
		query.Needle = *args.FilterNeedle
	}
	return q.store.FindLinks(ctx, query)
}

// UniqueLink returns nil without an error when id is not numeric or no such
// link exists.
func (q *QueryResolver) UniqueLink(ctx context.Context, id string) (*models.Link, error) {
	linkID, ok := utils.ParseID(id)
	if !ok {
		return nil, nil
	}
	return nullIfMissing(q.store.FindLinkByID(ctx, linkID))
}

func (q *QueryResolver) AllComment(ctx context.Context) ([]models.Comment, error) {
	return q.store.FindComments(ctx)
}

// UniqueComment follows the same lookup rules as UniqueLink.
func (q *QueryResolver) UniqueComment(ctx context.Context, id string) (*models.Comment, error) {
	commentID, ok := utils.ParseID(id)
	if !ok {
		return nil, nil
	}
	return nullIfMissing(q.store.FindCommentByID(ctx, commentID))
}

// Me returns the caller of the request.
func (q *QueryResolver) Me(ctx context.Context) (*models.User, error) {
	return requireCaller(ctx)
}

// GetUser requires an authenticated caller, then looks the user up like
// UniqueLink does.
func (q *QueryResolver) GetUser(ctx context.Context, id string) (*models.User, error) {
	if _, err := requireCaller(ctx); err != nil {
		return nil, err
	}
	userID, ok := utils.ParseID(id)
	if !ok {
		return nil, nil
	}
	return nullIfMissing(q.store.FindUserByID(ctx, userID))
}

func nullIfMissing[T any](v *T, err error) (*T, error) {
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
