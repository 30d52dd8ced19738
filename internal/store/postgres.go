package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"linkboard/internal/models"
)

// Postgres SQLSTATE codes for integrity violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var queryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "linkboard_store_query_duration_seconds",
		Help:    "Gateway operation duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation"},
)

var orderColumns = map[LinkOrderField]string{
	OrderByDescription: "description",
	OrderByURL:         "url",
	OrderByCreatedAt:   "created_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostgresStore is the gorm-backed Gateway.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func observe(operation string) func() {
	start := time.Now()
	return func() {
		queryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	defer observe("create_user")()
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error)
}

func (s *PostgresStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	defer observe("find_user")()
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *PostgresStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	defer observe("find_user_by_email")()
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *PostgresStore) CreateLink(ctx context.Context, link *models.Link) error {
	defer observe("create_link")()
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(link).Error)
}

func (s *PostgresStore) FindLinkByID(ctx context.Context, id uint) (*models.Link, error) {
	defer observe("find_link")()
	var link models.Link
	if err := s.db.WithContext(ctx).First(&link, id).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

func (s *PostgresStore) FindLinks(ctx context.Context, q LinkQuery) ([]models.Link, error) {
	defer observe("find_links")()
	tx := s.db.WithContext(ctx).Model(&models.Link{})

	if q.Needle != "" {
		pattern := "%" + likeEscaper.Replace(q.Needle) + "%"
		tx = tx.Where("description LIKE ? OR url LIKE ?", pattern, pattern)
	}

	if q.OrderBy != nil {
		column, ok := orderColumns[q.OrderBy.Field]
		if !ok {
			return nil, errors.New("unsupported link order field " + string(q.OrderBy.Field))
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: q.OrderBy.Desc})
	} else {
		tx = tx.Order("id ASC")
	}

	if q.Skip > 0 {
		tx = tx.Offset(q.Skip)
	}
	if q.Take > 0 {
		tx = tx.Limit(q.Take)
	}

	var links []models.Link
	if err := tx.Find(&links).Error; err != nil {
		return nil, translate(err)
	}
	return links, nil
}

func (s *PostgresStore) FindLinksByUser(ctx context.Context, userID uint) ([]models.Link, error) {
	defer observe("find_links_by_user")()
	var links []models.Link
	err := s.db.WithContext(ctx).
		Where("posted_by_id = ?", userID).
		Order("id ASC").
		Find(&links).Error
	return links, translate(err)
}

func (s *PostgresStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	defer observe("create_comment")()
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error)
}

func (s *PostgresStore) FindCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	defer observe("find_comment")()
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (s *PostgresStore) FindComments(ctx context.Context) ([]models.Comment, error) {
	defer observe("find_comments")()
	var comments []models.Comment
	err := s.db.WithContext(ctx).Order("id ASC").Find(&comments).Error
	return comments, translate(err)
}

func (s *PostgresStore) FindCommentsByLink(ctx context.Context, linkID uint) ([]models.Comment, error) {
	defer observe("find_comments_by_link")()
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("link_id = ?", linkID).
		Order("id ASC").
		Find(&comments).Error
	return comments, translate(err)
}

func (s *PostgresStore) CreateVote(ctx context.Context, vote *models.Vote) error {
	defer observe("create_vote")()
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(vote).Error)
}

func (s *PostgresStore) FindVote(ctx context.Context, userID, linkID uint) (*models.Vote, error) {
	defer observe("find_vote")()
	var vote models.Vote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND link_id = ?", userID, linkID).
		First(&vote).Error
	if err != nil {
		return nil, translate(err)
	}
	return &vote, nil
}

func (s *PostgresStore) FindVotesByLink(ctx context.Context, linkID uint) ([]models.Vote, error) {
	defer observe("find_votes_by_link")()
	var votes []models.Vote
	err := s.db.WithContext(ctx).
		Where("link_id = ?", linkID).
		Order("id ASC").
		Find(&votes).Error
	return votes, translate(err)
}

func (s *PostgresStore) FindVotesByUser(ctx context.Context, userID uint) ([]models.Vote, error) {
	defer observe("find_votes_by_user")()
	var votes []models.Vote
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&votes).Error
	return votes, translate(err)
}

func (s *PostgresStore) CountVotesByLink(ctx context.Context, linkID uint) (int64, error) {
	defer observe("count_votes_by_link")()
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Vote{}).Where("link_id = ?", linkID).Count(&count).Error
	return count, translate(err)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate maps driver and gorm errors onto the gateway's error contract.
// Errors that are neither a missing record nor an integrity violation pass
// through unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &ConstraintError{Kind: ViolationUnique, Constraint: pgErr.ConstraintName, Err: err}
		case pgForeignKeyViolation:
			return &ConstraintError{Kind: ViolationForeignKey, Constraint: pgErr.ConstraintName, Err: err}
		}
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &ConstraintError{Kind: ViolationUnique, Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &ConstraintError{Kind: ViolationForeignKey, Err: err}
	}
	return err
}
