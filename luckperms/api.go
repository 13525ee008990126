package luckperms

import (
	"context"

	"github.com/google/uuid"
)

// API defines the interface for LuckPerms operations
type API interface {
	// TestConnection verifies the client can reach a healthy server
	TestConnection(ctx context.Context) error
	Health(ctx context.Context) (*HealthStatus, error)

	// User operations
	ListUsers(ctx context.Context) ([]uuid.UUID, error)
	CreateUser(ctx context.Context, user UserIdentifier) (*User, error)
	LookupUsername(ctx context.Context, username string) (*UserIdentifier, error)
	LookupUniqueID(ctx context.Context, id uuid.UUID) (*UserIdentifier, error)
	SearchUsers(ctx context.Context, search SearchRequest) ([]UserSearchResult, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	GetUserNodes(ctx context.Context, id uuid.UUID) ([]Node, error)
	AddUserNode(ctx context.Context, id uuid.UUID, node Node) error
	AddUserNodes(ctx context.Context, id uuid.UUID, nodes []Node) error
	SetUserNodes(ctx context.Context, id uuid.UUID, nodes []Node) error
	DeleteUserNodes(ctx context.Context, id uuid.UUID, nodes []Node) error
	GetUserMetadata(ctx context.Context, id uuid.UUID) ([]Metadata, error)
	CheckUserPermission(ctx context.Context, id uuid.UUID, permission string) (*PermissionCheckResult, error)
	CheckUserPermissionQuery(ctx context.Context, id uuid.UUID, request PermissionCheckRequest) (*PermissionCheckResult, error)
	PromoteUser(ctx context.Context, id uuid.UUID, track string) (*TrackMoveResponse, error)
	DemoteUser(ctx context.Context, id uuid.UUID, track string) (*TrackMoveResponse, error)

	// Group operations
	ListGroups(ctx context.Context) ([]string, error)
	CreateGroup(ctx context.Context, name string) (*Group, error)
	SearchGroups(ctx context.Context, search SearchRequest) ([]GroupSearchResult, error)
	GetGroup(ctx context.Context, name string) (*Group, error)
	DeleteGroup(ctx context.Context, name string) error
	GetGroupNodes(ctx context.Context, name string) ([]Node, error)
	AddGroupNode(ctx context.Context, name string, node Node) ([]Node, error)
	AddGroupNodes(ctx context.Context, name string, nodes []Node) ([]Node, error)
	SetGroupNodes(ctx context.Context, name string, nodes []Node) error
	DeleteGroupNodes(ctx context.Context, name string, nodes []Node) error
	GetGroupMetadata(ctx context.Context, name string) (*Metadata, error)
	CheckGroupPermission(ctx context.Context, name, permission string) (*PermissionCheckResult, error)
	CheckGroupPermissionQuery(ctx context.Context, name string, request PermissionCheckRequest) (*PermissionCheckResult, error)

	// Action log
	SubmitAction(ctx context.Context, action Action) error
}

var _ API = (*Client)(nil)
