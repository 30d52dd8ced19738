package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkboard/internal/resolver"
)

func TestParseSelection(t *testing.T) {
	sel, err := ParseSelection("Link", "comments, postedBy,votes.user.links,votes.link")
	require.NoError(t, err)

	assert.Equal(t, "comments,postedBy,votes.link,votes.user.links", sel.String())
	assert.Contains(t, sel, "comments")
	assert.Contains(t, sel["votes"]["user"], "links")
}

func TestParseSelectionEmpty(t *testing.T) {
	sel, err := ParseSelection("User", "")
	require.NoError(t, err)
	assert.Empty(t, sel)
}

func TestParseSelectionRejects(t *testing.T) {
	for name, include := range map[string]string{
		"unknown field":   "author",
		"wrong type":      "votes.comments",
		"into scalar":     "voteCount.value",
		"nested too deep": "votes.user.votes.link.comments",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSelection("Link", include)
			assert.ErrorIs(t, err, resolver.ErrInvalidArgument)
		})
	}
}

func TestProjectAllPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	fn := func(_ context.Context, n *int, _ Selection) (object, error) {
		if *n == 2 {
			return nil, boom
		}
		return object{"n": *n}, nil
	}

	for name, sel := range map[string]Selection{
		"unselected": nil,
		"selected":   {"postedBy": {}},
	} {
		out, err := projectAll(context.Background(), []int{1, 2, 3}, sel, fn)
		assert.ErrorIs(t, err, boom, name)
		assert.Nil(t, out, name)
	}

	out, err := projectAll(context.Background(), []int{1, 3}, nil, fn)
	require.NoError(t, err)
	assert.Equal(t, []object{{"n": 1}, {"n": 3}}, out)
}
