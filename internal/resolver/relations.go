package resolver

import (
	"context"
	"html/template"

	"linkboard/internal/models"
	"linkboard/internal/utils"
)

// PostedBy returns the author of link, or nil for an anonymous link or an
// author that no longer exists.
func (r *LinkResolver) PostedBy(ctx context.Context, link *models.Link) (*models.User, error) {
	if link.PostedByID == nil {
		return nil, nil
	}
	return nullIfMissing(r.store.FindUserByID(ctx, *link.PostedByID))
}

func (r *LinkResolver) Comments(ctx context.Context, link *models.Link) ([]models.Comment, error) {
	return r.store.FindCommentsByLink(ctx, link.ID)
}

func (r *LinkResolver) Votes(ctx context.Context, link *models.Link) ([]models.Vote, error) {
	return r.store.FindVotesByLink(ctx, link.ID)
}

func (r *LinkResolver) VoteCount(ctx context.Context, link *models.Link) (int64, error) {
	return r.store.CountVotesByLink(ctx, link.ID)
}

func (r *CommentResolver) Link(ctx context.Context, comment *models.Comment) (*models.Link, error) {
	return nullIfMissing(r.store.FindLinkByID(ctx, comment.LinkID))
}

// BodyHTML renders the comment body as sanitized markdown.
func (r *CommentResolver) BodyHTML(comment *models.Comment) template.HTML {
	return utils.RenderMarkdown(comment.Body)
}

func (r *VoteResolver) Link(ctx context.Context, vote *models.Vote) (*models.Link, error) {
	return nullIfMissing(r.store.FindLinkByID(ctx, vote.LinkID))
}

func (r *VoteResolver) User(ctx context.Context, vote *models.Vote) (*models.User, error) {
	return nullIfMissing(r.store.FindUserByID(ctx, vote.UserID))
}

func (r *UserResolver) Links(ctx context.Context, user *models.User) ([]models.Link, error) {
	return r.store.FindLinksByUser(ctx, user.ID)
}

func (r *UserResolver) Votes(ctx context.Context, user *models.User) ([]models.Vote, error) {
	return r.store.FindVotesByUser(ctx, user.ID)
}
