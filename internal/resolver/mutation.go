package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"linkboard/internal/models"
	"linkboard/internal/pubsub"
	"linkboard/internal/store"
	"linkboard/internal/utils"
)

// AuthPayload is returned by Signup and Login.
type AuthPayload struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (m *MutationResolver) Signup(ctx context.Context, email, password, name string) (*AuthPayload, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" || password == "" {
		return nil, newError(ErrInvalidArgument, "email, password and name are required")
	}

	hash, err := utils.HashPassword(password, m.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{Email: email, Name: name, Password: hash}
	if err := m.store.CreateUser(ctx, user); err != nil {
		if store.ViolationOf(err) == store.ViolationUnique {
			return nil, newError(ErrInvalidArgument, "email already registered")
		}
		return nil, err
	}

	m.log.Info().Uint("userID", user.ID).Msg("user signed up")
	return m.authPayload(user)
}

func (m *MutationResolver) Login(ctx context.Context, email, password string) (*AuthPayload, error) {
	user, err := m.store.FindUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(ErrUserNotFound, "No such user found")
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, newError(ErrInvalidPassword, "Invalid password")
	}
	return m.authPayload(user)
}

func (m *MutationResolver) authPayload(user *models.User) (*AuthPayload, error) {
	token, err := m.tokens.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthPayload{Token: token, User: user}, nil
}

// PostLink creates a link authored by the caller and announces it on newLink.
func (m *MutationResolver) PostLink(ctx context.Context, url, description string) (*models.Link, error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}

	url = strings.TrimSpace(url)
	description = utils.StripHTML(description)
	if url == "" || description == "" {
		return nil, newError(ErrInvalidArgument, "url and description are required")
	}

	authorID := caller.ID
	link := &models.Link{URL: url, Description: description, PostedByID: &authorID}
	if err := m.store.CreateLink(ctx, link); err != nil {
		return nil, err
	}

	m.events.Publish(pubsub.TopicNewLink, pubsub.NewLinkEvent(link))
	return link, nil
}

// PostCommentOnLink attaches a comment to the link identified by linkID.
// A malformed id is rejected without touching the store; a well-formed id of
// a missing link is reported by the store as a foreign key violation. Both
// surface as ErrLinkNotFound.
func (m *MutationResolver) PostCommentOnLink(ctx context.Context, linkID, body string) (*models.Comment, error) {
	id, ok := utils.ParseID(linkID)
	if !ok {
		return nil, linkNotFound(linkID)
	}
	if strings.TrimSpace(body) == "" {
		return nil, newError(ErrInvalidArgument, "comment body is required")
	}

	comment := &models.Comment{LinkID: id, Body: body}
	if err := m.store.CreateComment(ctx, comment); err != nil {
		if store.ViolationOf(err) == store.ViolationForeignKey {
			return nil, linkNotFound(linkID)
		}
		return nil, err
	}
	return comment, nil
}

// Vote records the caller's vote for a link and announces it on newVote.
//
// The lookup before inserting only catches the common repeat. Two concurrent
// requests can both pass it; the store's unique (user, link) index rejects
// the loser, and that rejection is reported with the same error.
func (m *MutationResolver) Vote(ctx context.Context, linkID string) (*models.Vote, error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	id, ok := utils.ParseID(linkID)
	if !ok {
		return nil, voteTargetNotFound(linkID)
	}
	label := strconv.FormatUint(uint64(id), 10)

	_, err = m.store.FindVote(ctx, caller.ID, id)
	switch {
	case err == nil:
		return nil, alreadyVoted(label)
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	vote := &models.Vote{UserID: caller.ID, LinkID: id}
	if err := m.store.CreateVote(ctx, vote); err != nil {
		switch store.ViolationOf(err) {
		case store.ViolationUnique:
			m.log.Debug().Uint("userID", caller.ID).Uint("linkID", id).Msg("concurrent duplicate vote rejected by store")
			return nil, alreadyVoted(label)
		case store.ViolationForeignKey:
			return nil, voteTargetNotFound(linkID)
		}
		return nil, err
	}

	m.events.Publish(pubsub.TopicNewVote, pubsub.NewVoteEvent(vote))
	return vote, nil
}
