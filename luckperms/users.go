package luckperms

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

func userPath(id uuid.UUID, rest ...string) []string {
	return append([]string{"user", id.String()}, rest...)
}

// ListUsers returns the unique ids of every known user
func (c *Client) ListUsers(ctx context.Context) ([]uuid.UUID, error) {
	var users []uuid.UUID
	err := c.do(ctx, call{op: "ListUsers", method: http.MethodGet, path: []string{"user"}}, &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser creates a user from an identifier pair
func (c *Client) CreateUser(ctx context.Context, user UserIdentifier) (*User, error) {
	var created User
	err := c.do(ctx, call{op: "CreateUser", method: http.MethodPost, path: []string{"user"}, body: user}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// LookupUsername resolves a username to its identifier pair
func (c *Client) LookupUsername(ctx context.Context, username string) (*UserIdentifier, error) {
	return c.lookup(ctx, "LookupUsername", url.Values{"username": {username}})
}

// LookupUniqueID resolves a unique id to its identifier pair
func (c *Client) LookupUniqueID(ctx context.Context, id uuid.UUID) (*UserIdentifier, error) {
	return c.lookup(ctx, "LookupUniqueID", url.Values{"uniqueId": {id.String()}})
}

func (c *Client) lookup(ctx context.Context, op string, query url.Values) (*UserIdentifier, error) {
	var ident UserIdentifier
	err := c.do(ctx, call{op: op, method: http.MethodGet, path: []string{"user", "lookup"}, query: query}, &ident)
	if err != nil {
		return nil, err
	}
	return &ident, nil
}

// SearchUsers finds users holding nodes that match the search
func (c *Client) SearchUsers(ctx context.Context, search SearchRequest) ([]UserSearchResult, error) {
	if err := search.Validate(); err != nil {
		return nil, &RequestError{Kind: KindURL, Op: "SearchUsers", Err: err}
	}
	var results []UserSearchResult
	err := c.do(ctx, call{op: "SearchUsers", method: http.MethodGet, path: []string{"user", "search"}, query: search.Values()}, &results)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetUser returns a user, or nil without error if the user does not exist
func (c *Client) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	found, err := c.send(ctx, call{op: "GetUser", method: http.MethodGet, path: userPath(id)}, &user, true)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// UpdateUsername changes the stored username of a user
func (c *Client) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	return c.do(ctx, call{
		op:     "UpdateUsername",
		method: http.MethodPatch,
		path:   userPath(id),
		body:   UsernameUpdateRequest{Username: username},
	}, nil)
}

// DeleteUser removes a user
func (c *Client) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, call{op: "DeleteUser", method: http.MethodDelete, path: userPath(id)}, nil)
}

// GetUserNodes returns the nodes set directly on a user
func (c *Client) GetUserNodes(ctx context.Context, id uuid.UUID) ([]Node, error) {
	var nodes []Node
	err := c.do(ctx, call{op: "GetUserNodes", method: http.MethodGet, path: userPath(id, "nodes")}, &nodes)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// AddUserNode adds one node to a user
func (c *Client) AddUserNode(ctx context.Context, id uuid.UUID, node Node) error {
	return c.do(ctx, call{op: "AddUserNode", method: http.MethodPost, path: userPath(id, "nodes"), body: node}, nil)
}

// AddUserNodes adds several nodes to a user
func (c *Client) AddUserNodes(ctx context.Context, id uuid.UUID, nodes []Node) error {
	return c.do(ctx, call{op: "AddUserNodes", method: http.MethodPatch, path: userPath(id, "nodes"), body: nonNilNodes(nodes)}, nil)
}

// SetUserNodes replaces all nodes of a user
func (c *Client) SetUserNodes(ctx context.Context, id uuid.UUID, nodes []Node) error {
	return c.do(ctx, call{op: "SetUserNodes", method: http.MethodPut, path: userPath(id, "nodes"), body: nonNilNodes(nodes)}, nil)
}

// DeleteUserNodes removes the given nodes from a user. The nodes travel in the
// body of the DELETE request.
func (c *Client) DeleteUserNodes(ctx context.Context, id uuid.UUID, nodes []Node) error {
	return c.do(ctx, call{op: "DeleteUserNodes", method: http.MethodDelete, path: userPath(id, "nodes"), body: nonNilNodes(nodes)}, nil)
}

// GetUserMetadata returns a user's resolved metadata
func (c *Client) GetUserMetadata(ctx context.Context, id uuid.UUID) ([]Metadata, error) {
	var metadata []Metadata
	err := c.do(ctx, call{op: "GetUserMetadata", method: http.MethodGet, path: userPath(id, "meta")}, &metadata)
	if err != nil {
		return nil, err
	}
	return metadata, nil
}

// CheckUserPermission checks a permission against a user with default query options
func (c *Client) CheckUserPermission(ctx context.Context, id uuid.UUID, permission string) (*PermissionCheckResult, error) {
	var result PermissionCheckResult
	err := c.do(ctx, call{
		op:     "CheckUserPermission",
		method: http.MethodGet,
		path:   userPath(id, "permissionCheck"),
		query:  url.Values{"permission": {permission}},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckUserPermissionQuery checks a permission against a user with explicit query options
func (c *Client) CheckUserPermissionQuery(ctx context.Context, id uuid.UUID, request PermissionCheckRequest) (*PermissionCheckResult, error) {
	var result PermissionCheckResult
	err := c.do(ctx, call{
		op:     "CheckUserPermissionQuery",
		method: http.MethodPost,
		path:   userPath(id, "permissionCheck"),
		body:   request,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// PromoteUser moves a user up the given track
func (c *Client) PromoteUser(ctx context.Context, id uuid.UUID, track string) (*TrackMoveResponse, error) {
	return c.moveOnTrack(ctx, "PromoteUser", id, "promote", track)
}

// DemoteUser moves a user down the given track
func (c *Client) DemoteUser(ctx context.Context, id uuid.UUID, track string) (*TrackMoveResponse, error) {
	return c.moveOnTrack(ctx, "DemoteUser", id, "demote", track)
}

func (c *Client) moveOnTrack(ctx context.Context, op string, id uuid.UUID, direction, track string) (*TrackMoveResponse, error) {
	var resp TrackMoveResponse
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   userPath(id, direction),
		body:   TrackMoveRequest{Track: track},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// nonNilNodes keeps a nil slice from being sent as JSON null
func nonNilNodes(nodes []Node) []Node {
	if nodes == nil {
		return []Node{}
	}
	return nodes
}
