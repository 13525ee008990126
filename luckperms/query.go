package luckperms

// QueryMode selects whether contexts are considered during a permission check
type QueryMode string

const (
	QueryModeContextual    QueryMode = "contextual"
	QueryModeNonContextual QueryMode = "non_contextual"
)

// QueryFlag tunes how inheritance and global contexts are resolved
type QueryFlag string

const (
	QueryFlagResolveInheritance                        QueryFlag = "resolve_inheritance"
	QueryFlagIncludeNodesWithoutServerContext          QueryFlag = "include_nodes_without_server_context"
	QueryFlagIncludeNodesWithoutWorldContext           QueryFlag = "include_nodes_without_world_context"
	QueryFlagApplyInheritanceNodesWithoutServerContext QueryFlag = "apply_inheritance_nodes_without_server_context"
	QueryFlagApplyInheritanceNodesWithoutWorldContext  QueryFlag = "apply_inheritance_nodes_without_world_context"
)

// Context is a key/value constraint such as server=lobby
type Context struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// QueryOptions narrows a permission check. Unset fields fall back to server defaults,
// so empty values are left out of the payload entirely.
type QueryOptions struct {
	Mode     QueryMode   `json:"mode,omitempty"`
	Flags    []QueryFlag `json:"flags,omitempty"`
	Contexts []Context   `json:"contexts,omitempty"`
}

// PermissionCheckRequest is the body of a permission check with query options
type PermissionCheckRequest struct {
	Permission   string       `json:"permission"`
	QueryOptions QueryOptions `json:"queryOptions"`
}
