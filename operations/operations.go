package operations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/s0up4200/lpctl/filter"
	"github.com/s0up4200/lpctl/luckperms"
)

// DefaultConcurrency bounds the number of in-flight requests in batch workflows
const DefaultConcurrency = 10

var (
	// ErrUserNotFound indicates a username or unique id the server does not know
	ErrUserNotFound = errors.New("user not found")
	// ErrGroupNotFound indicates a group the server does not know
	ErrGroupNotFound = errors.New("group not found")
)

// Operations runs workflows built from several client calls
type Operations struct {
	api         luckperms.API
	logger      zerolog.Logger
	concurrency int
	actor       *luckperms.ActionSource
	now         func() time.Time
}

// Option configures Operations
type Option func(*Operations)

// WithConcurrency bounds concurrent requests in batch workflows
func WithConcurrency(n int) Option {
	return func(o *Operations) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithActor records every mutation in the action log under the given source
func WithActor(uniqueID uuid.UUID, name string) Option {
	return func(o *Operations) {
		o.actor = &luckperms.ActionSource{UniqueID: uniqueID, Name: name}
	}
}

// WithClock sets the time source used for action timestamps
func WithClock(now func() time.Time) Option {
	return func(o *Operations) {
		o.now = now
	}
}

// NewOperations creates a new Operations instance
func NewOperations(api luckperms.API, logger zerolog.Logger, opts ...Option) *Operations {
	o := &Operations{
		api:         api,
		logger:      logger,
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// API returns the underlying client
func (o *Operations) API() luckperms.API {
	return o.api
}

// ResolveUser accepts either a unique id or a username
func (o *Operations) ResolveUser(ctx context.Context, ref string) (*luckperms.UserIdentifier, error) {
	var (
		ident *luckperms.UserIdentifier
		err   error
	)

	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		ident, err = o.api.LookupUniqueID(ctx, id)
	} else {
		ident, err = o.api.LookupUsername(ctx, ref)
	}

	if err != nil {
		if luckperms.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, ref)
		}
		return nil, fmt.Errorf("failed to resolve user %s: %w", ref, err)
	}

	return ident, nil
}

// ResolveSubject turns a command-line reference into a Subject. Groups are taken by name.
func (o *Operations) ResolveSubject(ctx context.Context, kind luckperms.ActionTargetType, ref string) (Subject, error) {
	switch kind {
	case luckperms.ActionTargetUser:
		ident, err := o.ResolveUser(ctx, ref)
		if err != nil {
			return Subject{}, err
		}
		return UserSubject(*ident), nil
	case luckperms.ActionTargetGroup:
		return GroupSubject(ref), nil
	default:
		return Subject{}, fmt.Errorf("unsupported subject kind %q", kind)
	}
}

// GetUser resolves ref and fetches the full user
func (o *Operations) GetUser(ctx context.Context, ref string) (*luckperms.User, error) {
	ident, err := o.ResolveUser(ctx, ref)
	if err != nil {
		return nil, err
	}

	user, err := o.api.GetUser(ctx, ident.UniqueID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, ref)
	}
	return user, nil
}

// GetGroup fetches a group, turning absence into ErrGroupNotFound
func (o *Operations) GetGroup(ctx context.Context, name string) (*luckperms.Group, error) {
	group, err := o.api.GetGroup(ctx, name)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, name)
	}
	return group, nil
}

// Nodes returns the nodes set directly on a subject
func (o *Operations) Nodes(ctx context.Context, subject Subject) ([]luckperms.Node, error) {
	if subject.IsUser() {
		return o.api.GetUserNodes(ctx, subject.UniqueID)
	}
	return o.api.GetGroupNodes(ctx, subject.Name)
}

// FilterNodes keeps the nodes matched by f. A nil filter keeps everything.
func (o *Operations) FilterNodes(nodes []luckperms.Node, f filter.CompiledFilter) ([]luckperms.Node, error) {
	if f == nil {
		return nodes, nil
	}

	matched, err := filter.Apply(f, nodes)
	if err != nil {
		return nil, err
	}

	o.logger.Debug().
		Str("filter", f.Expression()).
		Int("total", len(nodes)).
		Int("matched", len(matched)).
		Msg("Filtered nodes")
	return matched, nil
}

// Metadata returns the resolved metadata of a subject. Users may carry one entry per context set.
func (o *Operations) Metadata(ctx context.Context, subject Subject) ([]luckperms.Metadata, error) {
	if subject.IsUser() {
		return o.api.GetUserMetadata(ctx, subject.UniqueID)
	}

	meta, err := o.api.GetGroupMetadata(ctx, subject.Name)
	if err != nil {
		return nil, err
	}
	return []luckperms.Metadata{*meta}, nil
}

// Search runs a node search against users or groups
func (o *Operations) Search(ctx context.Context, kind luckperms.ActionTargetType, search luckperms.SearchRequest) (*SearchResults, error) {
	switch kind {
	case luckperms.ActionTargetUser:
		users, err := o.api.SearchUsers(ctx, search)
		if err != nil {
			return nil, err
		}
		return &SearchResults{Query: search, Users: users}, nil
	case luckperms.ActionTargetGroup:
		groups, err := o.api.SearchGroups(ctx, search)
		if err != nil {
			return nil, err
		}
		return &SearchResults{Query: search, Groups: groups}, nil
	default:
		return nil, fmt.Errorf("unsupported search kind %q", kind)
	}
}
