package luckperms

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserIdentifier pairs a user's unique id with their username
type UserIdentifier struct {
	UniqueID uuid.UUID `json:"uniqueId"`
	Username string    `json:"username"`
}

// User represents the full state of a LuckPerms user
type User struct {
	UniqueID     uuid.UUID `json:"uniqueId"`
	Username     string    `json:"username"`
	ParentGroups []string  `json:"parentGroups"`
	Nodes        []Node    `json:"nodes"`
}

// UnmarshalJSON fills absent group and node lists with empty slices
func (u *User) UnmarshalJSON(data []byte) error {
	type user User
	var decoded user
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.ParentGroups == nil {
		decoded.ParentGroups = []string{}
	}
	if decoded.Nodes == nil {
		decoded.Nodes = []Node{}
	}
	*u = User(decoded)
	return nil
}

// Identifier returns the user's identifier pair
func (u *User) Identifier() UserIdentifier {
	return UserIdentifier{UniqueID: u.UniqueID, Username: u.Username}
}

// Group represents a LuckPerms group
type Group struct {
	Name        string   `json:"name"`
	DisplayName *string  `json:"displayName,omitempty"`
	Weight      *int64   `json:"weight,omitempty"`
	Nodes       []Node   `json:"nodes"`
	Metadata    Metadata `json:"metadata"`
}

// GetDisplayName returns the display name if set, otherwise the group name
func (g *Group) GetDisplayName() string {
	if g.DisplayName != nil && *g.DisplayName != "" {
		return *g.DisplayName
	}
	return g.Name
}

// Node is a single permission grant attached to a user or group
type Node struct {
	Key     string   `json:"key"`
	Type    NodeType `json:"type"`
	Value   bool     `json:"value"`
	Context []string `json:"context"`
	Expiry  *uint64  `json:"expiry,omitempty"`
}

// NewNode creates a node with an empty context and no expiry
func NewNode(key string, nodeType NodeType, value bool) Node {
	return Node{
		Key:     key,
		Type:    nodeType,
		Value:   value,
		Context: []string{},
	}
}

// WithExpiry returns a copy of the node expiring at t
func (n Node) WithExpiry(t time.Time) Node {
	expiry := uint64(t.Unix())
	n.Expiry = &expiry
	return n
}

// IsTemporary reports whether the node carries an expiry
func (n Node) IsTemporary() bool {
	return n.Expiry != nil
}

// ExpiresAt returns the expiry time, or the zero time for permanent nodes
func (n Node) ExpiresAt() time.Time {
	if n.Expiry == nil {
		return time.Time{}
	}
	return time.Unix(int64(*n.Expiry), 0)
}

// IsExpired reports whether a temporary node has expired at now
func (n Node) IsExpired(now time.Time) bool {
	return n.IsTemporary() && !now.Before(n.ExpiresAt())
}

// MarshalJSON always sends a context list, empty rather than null
func (n Node) MarshalJSON() ([]byte, error) {
	type wireNode Node
	if n.Context == nil {
		n.Context = []string{}
	}
	return json.Marshal(wireNode(n))
}

func (n Node) String() string {
	return fmt.Sprintf("%s (%s=%t)", n.Key, n.Type, n.Value)
}

// Metadata holds the resolved meta values of a subject
type Metadata struct {
	Meta         map[string]string `json:"meta"`
	Prefix       *string           `json:"prefix,omitempty"`
	Suffix       *string           `json:"suffix,omitempty"`
	PrimaryGroup *string           `json:"primaryGroup,omitempty"`
}

// UserSearchResult lists the matching nodes for one user
type UserSearchResult struct {
	UniqueID uuid.UUID `json:"uniqueId"`
	Results  []Node    `json:"results"`
}

// GroupSearchResult lists the matching nodes for one group
type GroupSearchResult struct {
	Name    string `json:"name"`
	Results []Node `json:"results"`
}

// PermissionCheckResult is the outcome of a permission check
type PermissionCheckResult struct {
	Result bool  `json:"result"`
	Node   *Node `json:"node,omitempty"`
}

// TrackMoveRequest is the body of promote and demote calls
type TrackMoveRequest struct {
	Track string `json:"track"`
}

// TrackMoveResponse describes the result of a promotion or demotion
type TrackMoveResponse struct {
	Success   bool   `json:"success"`
	Status    string `json:"status"`
	GroupFrom string `json:"groupFrom"`
	GroupTo   string `json:"groupTo"`
}

// UsernameUpdateRequest is the body of a username update
type UsernameUpdateRequest struct {
	Username string `json:"username"`
}

// GroupCreateRequest is the body of a group creation
type GroupCreateRequest struct {
	Name string `json:"name"`
}

// HealthStatus is reported by the health endpoint
type HealthStatus struct {
	Healthy bool           `json:"healthy"`
	Details map[string]any `json:"details,omitempty"`
}

// ActionTargetType identifies what kind of subject an action touched
type ActionTargetType string

const (
	// ActionTargetUser targets a user
	ActionTargetUser ActionTargetType = "user"
	// ActionTargetGroup targets a group
	ActionTargetGroup ActionTargetType = "group"
	// ActionTargetTrack targets a track
	ActionTargetTrack ActionTargetType = "track"
)

// Action is an audit log entry submitted to the action log
type Action struct {
	Timestamp   *uint64      `json:"timestamp,omitempty"`
	Source      ActionSource `json:"source"`
	Target      ActionTarget `json:"target"`
	Description string       `json:"description"`
}

// ActionSource identifies who performed an action
type ActionSource struct {
	UniqueID uuid.UUID `json:"uniqueId"`
	Name     string    `json:"name"`
}

// ActionTarget identifies the subject of an action
type ActionTarget struct {
	UniqueID *uuid.UUID       `json:"uniqueId,omitempty"`
	Name     string           `json:"name"`
	Type     ActionTargetType `json:"type"`
}
