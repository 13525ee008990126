package operations

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/s0up4200/lpctl/luckperms"
)

// Subject is a user or group that nodes are attached to
type Subject struct {
	Kind     luckperms.ActionTargetType
	UniqueID uuid.UUID
	Name     string
}

// UserSubject builds a user subject from its identifier
func UserSubject(ident luckperms.UserIdentifier) Subject {
	return Subject{Kind: luckperms.ActionTargetUser, UniqueID: ident.UniqueID, Name: ident.Username}
}

// GroupSubject builds a group subject from its name
func GroupSubject(name string) Subject {
	return Subject{Kind: luckperms.ActionTargetGroup, Name: name}
}

// IsUser reports whether the subject is a user
func (s Subject) IsUser() bool {
	return s.Kind == luckperms.ActionTargetUser
}

// Target converts the subject into an action log target
func (s Subject) Target() luckperms.ActionTarget {
	target := luckperms.ActionTarget{Name: s.Name, Type: s.Kind}
	if s.IsUser() {
		id := s.UniqueID
		target.UniqueID = &id
		if target.Name == "" {
			target.Name = id.String()
		}
	}
	return target
}

func (s Subject) String() string {
	if s.IsUser() {
		if s.Name == "" {
			return s.UniqueID.String()
		}
		return fmt.Sprintf("%s (%s)", s.Name, s.UniqueID)
	}
	return s.Name
}

// PermissionOutcome is one successful check in a batch
type PermissionOutcome struct {
	Permission string
	Result     luckperms.PermissionCheckResult
}

// CheckError contains information about a failed permission check
type CheckError struct {
	Permission string
	Err        error
}

// Error implements the error interface
func (e CheckError) Error() string {
	return fmt.Sprintf("failed to check %s: %v", e.Permission, e.Err)
}

func (e CheckError) Unwrap() error {
	return e.Err
}

// BatchCheckResult contains the results of a batch permission check.
// Checked and Failed keep the order the permissions were requested in.
type BatchCheckResult struct {
	Subject   Subject
	Requested int
	Checked   []PermissionOutcome
	Failed    []CheckError
}

// Granted returns the permissions that resolved to true
func (r BatchCheckResult) Granted() []string {
	var granted []string
	for _, outcome := range r.Checked {
		if outcome.Result.Result {
			granted = append(granted, outcome.Permission)
		}
	}
	return granted
}

// SearchResults holds the matches of a user or group search
type SearchResults struct {
	Query  luckperms.SearchRequest
	Users  []luckperms.UserSearchResult
	Groups []luckperms.GroupSearchResult
}
