package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"linkboard/internal/models"
	"linkboard/internal/resolver"
)

// Selection is the set of relation fields a client asked for, keyed by field
// name, each with its own nested selection. It is parsed from the include
// query parameter: "comments,postedBy,votes.user".
type Selection map[string]Selection

// fields maps an entity type to its selectable fields and the type each one
// resolves to. An empty target marks a scalar.
var fields = map[string]map[string]string{
	"Link": {
		"comments":  "Comment",
		"postedBy":  "User",
		"votes":     "Vote",
		"voteCount": "",
	},
	"Comment": {
		"link":     "Link",
		"bodyHTML": "",
	},
	"Vote": {
		"link": "Link",
		"user": "User",
	},
	"User": {
		"links": "Link",
		"votes": "Vote",
	},
}

const maxSelectionDepth = 4

// ParseSelection parses include against the fields of the root type.
func ParseSelection(root, include string) (Selection, error) {
	sel := Selection{}
	for _, path := range strings.Split(include, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		parts := strings.Split(path, ".")
		if len(parts) > maxSelectionDepth {
			return nil, invalidArgument("include path '%s' is nested too deeply", path)
		}

		typ, node := root, sel
		for _, name := range parts {
			if typ == "" {
				return nil, invalidArgument("'%s' selects into a scalar field", path)
			}
			target, ok := fields[typ][name]
			if !ok {
				return nil, invalidArgument("unknown field '%s' on %s", name, typ)
			}
			if node[name] == nil {
				node[name] = Selection{}
			}
			typ, node = target, node[name]
		}
	}
	return sel, nil
}

func invalidArgument(format string, args ...any) error {
	return &resolver.Error{Kind: resolver.ErrInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// String renders the selection back in include syntax, sorted.
func (s Selection) String() string {
	var paths []string
	for name, sub := range s {
		if len(sub) == 0 {
			paths = append(paths, name)
			continue
		}
		for _, child := range strings.Split(sub.String(), ",") {
			paths = append(paths, name+"."+child)
		}
	}
	sort.Strings(paths)
	return strings.Join(paths, ",")
}

// projector turns entities into response objects, resolving only the selected
// relations. Sibling relations are resolved concurrently once their parent is
// available.
type projector struct {
	r *resolver.Resolver
}

type object map[string]any

// fieldGroup collects concurrently resolved fields into one object.
type fieldGroup struct {
	g   *errgroup.Group
	ctx context.Context
	mu  sync.Mutex
	out object
}

func newFieldGroup(ctx context.Context, out object) *fieldGroup {
	g, ctx := errgroup.WithContext(ctx)
	return &fieldGroup{g: g, ctx: ctx, out: out}
}

func (f *fieldGroup) resolve(name string, fn func(ctx context.Context) (any, error)) {
	f.g.Go(func() error {
		v, err := fn(f.ctx)
		if err != nil {
			return err
		}
		f.mu.Lock()
		f.out[name] = v
		f.mu.Unlock()
		return nil
	})
}

func (f *fieldGroup) wait() (object, error) {
	if err := f.g.Wait(); err != nil {
		return nil, err
	}
	return f.out, nil
}

const listConcurrency = 8

func projectAll[T any](ctx context.Context, items []T, sel Selection, fn func(context.Context, *T, Selection) (object, error)) ([]object, error) {
	out := make([]object, len(items))
	if len(sel) == 0 {
		for i := range items {
			obj, err := fn(ctx, &items[i], nil)
			if err != nil {
				return nil, err
			}
			out[i] = obj
		}
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for i := range items {
		i := i
		g.Go(func() error {
			obj, err := fn(ctx, &items[i], sel)
			out[i] = obj
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func projectOne[T any](ctx context.Context, item *T, sel Selection, fn func(context.Context, *T, Selection) (object, error)) (any, error) {
	if item == nil {
		return nil, nil
	}
	return fn(ctx, item, sel)
}

func (p projector) link(ctx context.Context, link *models.Link, sel Selection) (object, error) {
	out := object{
		"id":          link.ID,
		"url":         link.URL,
		"description": link.Description,
		"postedById":  link.PostedByID,
		"createdAt":   link.CreatedAt,
	}
	if len(sel) == 0 {
		return out, nil
	}

	lr := p.r.Link()
	group := newFieldGroup(ctx, out)
	for name, sub := range sel {
		name, sub := name, sub
		switch name {
		case "comments":
			group.resolve(name, func(ctx context.Context) (any, error) {
				comments, err := lr.Comments(ctx, link)
				if err != nil {
					return nil, err
				}
				return projectAll(ctx, comments, sub, p.comment)
			})
		case "postedBy":
			group.resolve(name, func(ctx context.Context) (any, error) {
				user, err := lr.PostedBy(ctx, link)
				if err != nil {
					return nil, err
				}
				return projectOne(ctx, user, sub, p.user)
			})
		case "votes":
			group.resolve(name, func(ctx context.Context) (any, error) {
				votes, err := lr.Votes(ctx, link)
				if err != nil {
					return nil, err
				}
				return projectAll(ctx, votes, sub, p.vote)
			})
		case "voteCount":
			group.resolve(name, func(ctx context.Context) (any, error) {
				return lr.VoteCount(ctx, link)
			})
		}
	}
	return group.wait()
}

func (p projector) comment(ctx context.Context, comment *models.Comment, sel Selection) (object, error) {
	out := object{
		"id":        comment.ID,
		"linkId":    comment.LinkID,
		"body":      comment.Body,
		"createdAt": comment.CreatedAt,
	}
	if len(sel) == 0 {
		return out, nil
	}

	cr := p.r.Comment()
	group := newFieldGroup(ctx, out)
	for name, sub := range sel {
		name, sub := name, sub
		switch name {
		case "link":
			group.resolve(name, func(ctx context.Context) (any, error) {
				link, err := cr.Link(ctx, comment)
				if err != nil {
					return nil, err
				}
				return projectOne(ctx, link, sub, p.link)
			})
		case "bodyHTML":
			group.resolve(name, func(context.Context) (any, error) {
				return string(cr.BodyHTML(comment)), nil
			})
		}
	}
	return group.wait()
}

func (p projector) vote(ctx context.Context, vote *models.Vote, sel Selection) (object, error) {
	out := object{
		"id":        vote.ID,
		"userId":    vote.UserID,
		"linkId":    vote.LinkID,
		"createdAt": vote.CreatedAt,
	}
	if len(sel) == 0 {
		return out, nil
	}

	vr := p.r.Vote()
	group := newFieldGroup(ctx, out)
	for name, sub := range sel {
		name, sub := name, sub
		switch name {
		case "link":
			group.resolve(name, func(ctx context.Context) (any, error) {
				link, err := vr.Link(ctx, vote)
				if err != nil {
					return nil, err
				}
				return projectOne(ctx, link, sub, p.link)
			})
		case "user":
			group.resolve(name, func(ctx context.Context) (any, error) {
				user, err := vr.User(ctx, vote)
				if err != nil {
					return nil, err
				}
				return projectOne(ctx, user, sub, p.user)
			})
		}
	}
	return group.wait()
}

func (p projector) user(ctx context.Context, user *models.User, sel Selection) (object, error) {
	out := object{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"createdAt": user.CreatedAt,
	}
	if len(sel) == 0 {
		return out, nil
	}

	ur := p.r.User()
	group := newFieldGroup(ctx, out)
	for name, sub := range sel {
		name, sub := name, sub
		switch name {
		case "links":
			group.resolve(name, func(ctx context.Context) (any, error) {
				links, err := ur.Links(ctx, user)
				if err != nil {
					return nil, err
				}
				return projectAll(ctx, links, sub, p.link)
			})
		case "votes":
			group.resolve(name, func(ctx context.Context) (any, error) {
				votes, err := ur.Votes(ctx, user)
				if err != nil {
					return nil, err
				}
				return projectAll(ctx, votes, sub, p.vote)
			})
		}
	}
	return group.wait()
}
