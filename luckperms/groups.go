package luckperms

import (
	"context"
	"net/http"
	"net/url"
)

func groupPath(name string, rest ...string) []string {
	return append([]string{"group", name}, rest...)
}

// ListGroups returns the names of every group
func (c *Client) ListGroups(ctx context.Context) ([]string, error) {
	var groups []string
	err := c.do(ctx, call{op: "ListGroups", method: http.MethodGet, path: []string{"group"}}, &groups)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateGroup creates an empty group
func (c *Client) CreateGroup(ctx context.Context, name string) (*Group, error) {
	if name == "" {
		return nil, &RequestError{Kind: KindURL, Op: "CreateGroup", Err: ErrEmptyPathSegment}
	}
	var group Group
	err := c.do(ctx, call{op: "CreateGroup", method: http.MethodPost, path: []string{"group"}, body: GroupCreateRequest{Name: name}}, &group)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// SearchGroups finds groups holding nodes that match the search
func (c *Client) SearchGroups(ctx context.Context, search SearchRequest) ([]GroupSearchResult, error) {
	if err := search.Validate(); err != nil {
		return nil, &RequestError{Kind: KindURL, Op: "SearchGroups", Err: err}
	}
	var results []GroupSearchResult
	err := c.do(ctx, call{op: "SearchGroups", method: http.MethodGet, path: []string{"group", "search"}, query: search.Values()}, &results)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetGroup returns a group, or nil without error if the group does not exist
func (c *Client) GetGroup(ctx context.Context, name string) (*Group, error) {
	var group Group
	found, err := c.send(ctx, call{op: "GetGroup", method: http.MethodGet, path: groupPath(name)}, &group, true)
	if err != nil || !found {
		return nil, err
	}
	return &group, nil
}

// DeleteGroup removes a group
func (c *Client) DeleteGroup(ctx context.Context, name string) error {
	return c.do(ctx, call{op: "DeleteGroup", method: http.MethodDelete, path: groupPath(name)}, nil)
}

// GetGroupNodes returns the nodes set directly on a group
func (c *Client) GetGroupNodes(ctx context.Context, name string) ([]Node, error) {
	var nodes []Node
	err := c.do(ctx, call{op: "GetGroupNodes", method: http.MethodGet, path: groupPath(name, "nodes")}, &nodes)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// AddGroupNode adds one node to a group and returns the group's resulting nodes
func (c *Client) AddGroupNode(ctx context.Context, name string, node Node) ([]Node, error) {
	var nodes []Node
	err := c.do(ctx, call{op: "AddGroupNode", method: http.MethodPost, path: groupPath(name, "nodes"), body: node}, &nodes)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// AddGroupNodes adds several nodes to a group and returns the group's resulting nodes
func (c *Client) AddGroupNodes(ctx context.Context, name string, add []Node) ([]Node, error) {
	var nodes []Node
	err := c.do(ctx, call{op: "AddGroupNodes", method: http.MethodPatch, path: groupPath(name, "nodes"), body: nonNilNodes(add)}, &nodes)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// SetGroupNodes replaces all nodes of a group
func (c *Client) SetGroupNodes(ctx context.Context, name string, nodes []Node) error {
	return c.do(ctx, call{op: "SetGroupNodes", method: http.MethodPut, path: groupPath(name, "nodes"), body: nonNilNodes(nodes)}, nil)
}

// DeleteGroupNodes removes the given nodes from a group
func (c *Client) DeleteGroupNodes(ctx context.Context, name string, nodes []Node) error {
	return c.do(ctx, call{op: "DeleteGroupNodes", method: http.MethodDelete, path: groupPath(name, "nodes"), body: nonNilNodes(nodes)}, nil)
}

// GetGroupMetadata returns a group's resolved metadata
func (c *Client) GetGroupMetadata(ctx context.Context, name string) (*Metadata, error) {
	var metadata Metadata
	err := c.do(ctx, call{op: "GetGroupMetadata", method: http.MethodGet, path: groupPath(name, "meta")}, &metadata)
	if err != nil {
		return nil, err
	}
	return &metadata, nil
}

// CheckGroupPermission checks a permission against a group with default query options
func (c *Client) CheckGroupPermission(ctx context.Context, name, permission string) (*PermissionCheckResult, error) {
	var result PermissionCheckResult
	err := c.do(ctx, call{
		op:     "CheckGroupPermission",
		method: http.MethodGet,
		path:   groupPath(name, "permissionCheck"),
		query:  url.Values{"permission": {permission}},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckGroupPermissionQuery checks a permission against a group with explicit query options
func (c *Client) CheckGroupPermissionQuery(ctx context.Context, name string, request PermissionCheckRequest) (*PermissionCheckResult, error) {
	var result PermissionCheckResult
	err := c.do(ctx, call{
		op:     "CheckGroupPermissionQuery",
		method: http.MethodPost,
		path:   groupPath(name, "permissionCheck"),
		body:   request,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
