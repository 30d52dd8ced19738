package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"linkboard/internal/models"
)

// MemoryStore is a Gateway kept entirely in process memory. It enforces the
// same integrity rules as the Postgres schema: unique user email, unique
// (user, link) vote pair and the foreign keys of links, comments and votes.
type MemoryStore struct {
	mu sync.RWMutex

	users    map[uint]models.User
	links    map[uint]models.Link
	comments map[uint]models.Comment
	votes    map[uint]models.Vote

	emails    map[string]uint
	votePairs map[[2]uint]uint

	nextID uint
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[uint]models.User),
		links:     make(map[uint]models.Link),
		comments:  make(map[uint]models.Comment),
		votes:     make(map[uint]models.Vote),
		emails:    make(map[string]uint),
		votePairs: make(map[[2]uint]uint),
		now:       time.Now,
	}
}

// id hands out identifiers from one sequence shared by every entity type.
// Callers must hold the write lock.
func (s *MemoryStore) id() uint {
	s.nextID++
	return s.nextID
}

func fkError(constraint string) error {
	return &ConstraintError{
		Kind:       ViolationForeignKey,
		Constraint: constraint,
		Err:        errors.New("referenced record does not exist"),
	}
}

func uniqueError(constraint string) error {
	return &ConstraintError{
		Kind:       ViolationUnique,
		Constraint: constraint,
		Err:        errors.New("duplicate key value"),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[user.Email]; taken {
		return uniqueError("idx_users_email")
	}
	user.ID = s.id()
	user.CreatedAt = s.now()
	s.users[user.ID] = *user
	s.emails[user.Email] = user.ID
	return nil
}

func (s *MemoryStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

func (s *MemoryStore) CreateLink(ctx context.Context, link *models.Link) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if link.PostedByID != nil {
		if _, ok := s.users[*link.PostedByID]; !ok {
			return fkError("fk_links_posted_by")
		}
	}
	link.ID = s.id()
	link.CreatedAt = s.now()
	stored := *link
	stored.PostedBy = nil
	s.links[link.ID] = stored
	return nil
}

func (s *MemoryStore) FindLinkByID(ctx context.Context, id uint) (*models.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.links[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &link, nil
}

func (s *MemoryStore) FindLinks(ctx context.Context, q LinkQuery) ([]models.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	links := make([]models.Link, 0, len(s.links))
	for _, l := range s.links {
		if q.Needle == "" || strings.Contains(l.Description, q.Needle) || strings.Contains(l.URL, q.Needle) {
			links = append(links, l)
		}
	}
	s.mu.RUnlock()

	sort.Slice(links, func(i, j int) bool { return links[i].ID < links[j].ID })
	if q.OrderBy != nil {
		less, err := linkLess(*q.OrderBy)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(links, func(i, j int) bool { return less(links[i], links[j]) })
	}

	return page(links, q.Skip, q.Take), nil
}

func linkLess(order LinkOrder) (func(a, b models.Link) bool, error) {
	var less func(a, b models.Link) bool
	switch order.Field {
	case OrderByDescription:
		less = func(a, b models.Link) bool { return a.Description < b.Description }
	case OrderByURL:
		less = func(a, b models.Link) bool { return a.URL < b.URL }
	case OrderByCreatedAt:
		less = func(a, b models.Link) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return nil, errors.New("unsupported link order field " + string(order.Field))
	}
	if order.Desc {
		return func(a, b models.Link) bool { return less(b, a) }, nil
	}
	return less, nil
}

func page[T any](items []T, skip, take int) []T {
	if skip > 0 {
		if skip >= len(items) {
			return items[:0]
		}
		items = items[skip:]
	}
	if take > 0 && take < len(items) {
		items = items[:take]
	}
	return items
}

func (s *MemoryStore) FindLinksByUser(ctx context.Context, userID uint) ([]models.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var links []models.Link
	for _, l := range s.links {
		if l.PostedByID != nil && *l.PostedByID == userID {
			links = append(links, l)
		}
	}
	sort.Slice(links, func(i, j int) bool { return links[i].ID < links[j].ID })
	return links, nil
}

func (s *MemoryStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.links[comment.LinkID]; !ok {
		return fkError("fk_comments_link")
	}
	comment.ID = s.id()
	comment.CreatedAt = s.now()
	stored := *comment
	stored.Link = models.Link{}
	s.comments[comment.ID] = stored
	return nil
}

func (s *MemoryStore) FindCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &comment, nil
}

func (s *MemoryStore) FindComments(ctx context.Context) ([]models.Comment, error) {
	return s.filterComments(ctx, func(models.Comment) bool { return true })
}

func (s *MemoryStore) FindCommentsByLink(ctx context.Context, linkID uint) ([]models.Comment, error) {
	return s.filterComments(ctx, func(c models.Comment) bool { return c.LinkID == linkID })
}

func (s *MemoryStore) filterComments(ctx context.Context, keep func(models.Comment) bool) ([]models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var comments []models.Comment
	for _, c := range s.comments {
		if keep(c) {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (s *MemoryStore) CreateVote(ctx context.Context, vote *models.Vote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[vote.UserID]; !ok {
		return fkError("fk_votes_user")
	}
	if _, ok := s.links[vote.LinkID]; !ok {
		return fkError("fk_votes_link")
	}
	pair := [2]uint{vote.UserID, vote.LinkID}
	if _, taken := s.votePairs[pair]; taken {
		return uniqueError("idx_vote_user_link")
	}
	vote.ID = s.id()
	vote.CreatedAt = s.now()
	stored := *vote
	stored.User = models.User{}
	stored.Link = models.Link{}
	s.votes[vote.ID] = stored
	s.votePairs[pair] = vote.ID
	return nil
}

func (s *MemoryStore) FindVote(ctx context.Context, userID, linkID uint) (*models.Vote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.votePairs[[2]uint{userID, linkID}]
	if !ok {
		return nil, ErrNotFound
	}
	vote := s.votes[id]
	return &vote, nil
}

func (s *MemoryStore) FindVotesByLink(ctx context.Context, linkID uint) ([]models.Vote, error) {
	return s.filterVotes(ctx, func(v models.Vote) bool { return v.LinkID == linkID })
}

func (s *MemoryStore) FindVotesByUser(ctx context.Context, userID uint) ([]models.Vote, error) {
	return s.filterVotes(ctx, func(v models.Vote) bool { return v.UserID == userID })
}

func (s *MemoryStore) CountVotesByLink(ctx context.Context, linkID uint) (int64, error) {
	votes, err := s.FindVotesByLink(ctx, linkID)
	return int64(len(votes)), err
}

func (s *MemoryStore) filterVotes(ctx context.Context, keep func(models.Vote) bool) ([]models.Vote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var votes []models.Vote
	for _, v := range s.votes {
		if keep(v) {
			votes = append(votes, v)
		}
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].ID < votes[j].ID })
	return votes, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
