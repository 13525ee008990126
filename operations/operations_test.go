package operations

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/lpctl/filter"
	"github.com/s0up4200/lpctl/luckperms"
)

var (
	aliceID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	bobID   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	carolID = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	actorID = uuid.MustParse("99999999-9999-9999-9999-999999999999")

	errBoom = errors.New("boom")
)

// mockAPI implements luckperms.API for testing. Methods not overridden panic
// through the nil embedded interface.
type mockAPI struct {
	luckperms.API

	mu        sync.Mutex
	users     map[uuid.UUID]string
	failIDs   map[uuid.UUID]bool
	nodes     map[string][]luckperms.Node
	granted   map[string]bool
	failPerms map[string]bool
	actions   []luckperms.Action
	actionErr error
	calls     []string
}

func newMockAPI() *mockAPI {
	return &mockAPI{
		users: map[uuid.UUID]string{
			aliceID: "Alice",
			bobID:   "bob",
			carolID: "Carol",
		},
		failIDs:   map[uuid.UUID]bool{},
		nodes:     map[string][]luckperms.Node{},
		granted:   map[string]bool{},
		failPerms: map[string]bool{},
	}
}

func (m *mockAPI) called(name string) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()
}

func notFound() error {
	return &luckperms.RequestError{Kind: luckperms.KindHTTP, Op: "Lookup", Err: &luckperms.APIError{StatusCode: 404}}
}

func (m *mockAPI) ListUsers(ctx context.Context) ([]uuid.UUID, error) {
	return []uuid.UUID{carolID, aliceID, bobID}, nil
}

func (m *mockAPI) LookupUniqueID(ctx context.Context, id uuid.UUID) (*luckperms.UserIdentifier, error) {
	if m.failIDs[id] {
		return nil, errBoom
	}
	name, ok := m.users[id]
	if !ok {
		return nil, notFound()
	}
	return &luckperms.UserIdentifier{UniqueID: id, Username: name}, nil
}

func (m *mockAPI) LookupUsername(ctx context.Context, username string) (*luckperms.UserIdentifier, error) {
	for id, name := range m.users {
		if strings.EqualFold(name, username) {
			return &luckperms.UserIdentifier{UniqueID: id, Username: name}, nil
		}
	}
	return nil, notFound()
}

func (m *mockAPI) GetUser(ctx context.Context, id uuid.UUID) (*luckperms.User, error) {
	name, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &luckperms.User{UniqueID: id, Username: name, ParentGroups: []string{"default"}, Nodes: m.nodes[id.String()]}, nil
}

func (m *mockAPI) GetGroup(ctx context.Context, name string) (*luckperms.Group, error) {
	if name != "admin" {
		return nil, nil
	}
	return &luckperms.Group{Name: name, Nodes: m.nodes[name]}, nil
}

func (m *mockAPI) GetUserNodes(ctx context.Context, id uuid.UUID) ([]luckperms.Node, error) {
	m.called("GetUserNodes")
	return m.nodes[id.String()], nil
}

func (m *mockAPI) GetGroupNodes(ctx context.Context, name string) ([]luckperms.Node, error) {
	m.called("GetGroupNodes")
	return m.nodes[name], nil
}

func (m *mockAPI) AddUserNodes(ctx context.Context, id uuid.UUID, nodes []luckperms.Node) error {
	m.called("AddUserNodes")
	m.nodes[id.String()] = append(m.nodes[id.String()], nodes...)
	return nil
}

func (m *mockAPI) AddGroupNodes(ctx context.Context, name string, nodes []luckperms.Node) ([]luckperms.Node, error) {
	m.called("AddGroupNodes")
	if name == "broken" {
		return nil, errBoom
	}
	m.nodes[name] = append(m.nodes[name], nodes...)
	return m.nodes[name], nil
}

func (m *mockAPI) DeleteUserNodes(ctx context.Context, id uuid.UUID, nodes []luckperms.Node) error {
	m.called("DeleteUserNodes")
	return nil
}

func (m *mockAPI) DeleteGroupNodes(ctx context.Context, name string, nodes []luckperms.Node) error {
	m.called("DeleteGroupNodes")
	return nil
}

func (m *mockAPI) SetGroupNodes(ctx context.Context, name string, nodes []luckperms.Node) error {
	m.called("SetGroupNodes")
	m.nodes[name] = nodes
	return nil
}

func (m *mockAPI) GetUserMetadata(ctx context.Context, id uuid.UUID) ([]luckperms.Metadata, error) {
	return []luckperms.Metadata{{Meta: map[string]string{"rank": "1"}}}, nil
}

func (m *mockAPI) GetGroupMetadata(ctx context.Context, name string) (*luckperms.Metadata, error) {
	return &luckperms.Metadata{Meta: map[string]string{"rank": "3"}}, nil
}

func (m *mockAPI) check(permission string) (*luckperms.PermissionCheckResult, error) {
	if m.failPerms[permission] {
		return nil, errBoom
	}
	return &luckperms.PermissionCheckResult{Result: m.granted[permission]}, nil
}

func (m *mockAPI) CheckUserPermission(ctx context.Context, id uuid.UUID, permission string) (*luckperms.PermissionCheckResult, error) {
	m.called("CheckUserPermission")
	return m.check(permission)
}

func (m *mockAPI) CheckGroupPermission(ctx context.Context, name, permission string) (*luckperms.PermissionCheckResult, error) {
	m.called("CheckGroupPermission")
	return m.check(permission)
}

func (m *mockAPI) CheckGroupPermissionQuery(ctx context.Context, name string, req luckperms.PermissionCheckRequest) (*luckperms.PermissionCheckResult, error) {
	m.called("CheckGroupPermissionQuery")
	return m.check(req.Permission)
}

func (m *mockAPI) PromoteUser(ctx context.Context, id uuid.UUID, track string) (*luckperms.TrackMoveResponse, error) {
	return &luckperms.TrackMoveResponse{Success: true, Status: "success", GroupFrom: "default", GroupTo: "helper"}, nil
}

func (m *mockAPI) DemoteUser(ctx context.Context, id uuid.UUID, track string) (*luckperms.TrackMoveResponse, error) {
	return &luckperms.TrackMoveResponse{Success: false, Status: "removed_from_first_group"}, nil
}

func (m *mockAPI) CreateGroup(ctx context.Context, name string) (*luckperms.Group, error) {
	return &luckperms.Group{Name: name, Nodes: []luckperms.Node{}}, nil
}

func (m *mockAPI) DeleteGroup(ctx context.Context, name string) error {
	if name == "default" {
		return errBoom
	}
	return nil
}

func (m *mockAPI) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (m *mockAPI) SubmitAction(ctx context.Context, action luckperms.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.actionErr != nil {
		return m.actionErr
	}
	m.actions = append(m.actions, action)
	return nil
}

func TestResolveUser(t *testing.T) {
	ops := NewOperations(newMockAPI(), zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name     string
		ref      string
		expected uuid.UUID
		notFound bool
	}{
		{name: "by username", ref: "alice", expected: aliceID},
		{name: "by unique id", ref: bobID.String(), expected: bobID},
		{name: "unknown username", ref: "mallory", notFound: true},
		{name: "unknown unique id", ref: uuid.Nil.String(), notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ident, err := ops.ResolveUser(ctx, tt.ref)
			if tt.notFound {
				assert.ErrorIs(t, err, ErrUserNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ident.UniqueID)
		})
	}
}

func TestResolveSubject(t *testing.T) {
	ops := NewOperations(newMockAPI(), zerolog.Nop())
	ctx := context.Background()

	user, err := ops.ResolveSubject(ctx, luckperms.ActionTargetUser, "Carol")
	require.NoError(t, err)
	assert.True(t, user.IsUser())
	assert.Equal(t, carolID, user.UniqueID)
	assert.Equal(t, "Carol (33333333-3333-3333-3333-333333333333)", user.String())

	group, err := ops.ResolveSubject(ctx, luckperms.ActionTargetGroup, "admin")
	require.NoError(t, err)
	assert.False(t, group.IsUser())
	assert.Equal(t, "admin", group.String())

	_, err = ops.ResolveSubject(ctx, luckperms.ActionTargetTrack, "staff")
	assert.Error(t, err)
}

func TestGetUserAndGroup(t *testing.T) {
	ops := NewOperations(newMockAPI(), zerolog.Nop())
	ctx := context.Background()

	user, err := ops.GetUser(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, bobID, user.UniqueID)

	group, err := ops.GetGroup(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", group.Name)

	_, err = ops.GetGroup(ctx, "ghosts")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestListUserIdentifiers(t *testing.T) {
	api := newMockAPI()
	api.failIDs[bobID] = true
	ops := NewOperations(api, zerolog.Nop(), WithConcurrency(2))

	idents, err := ops.ListUserIdentifiers(context.Background())
	require.NoError(t, err)

	// bob failed the lookup and is skipped; the rest are sorted by username
	require.Len(t, idents, 2)
	assert.Equal(t, "Alice", idents[0].Username)
	assert.Equal(t, "Carol", idents[1].Username)
}

func TestCheckPermissions(t *testing.T) {
	api := newMockAPI()
	api.granted["worldedit.wand"] = true
	api.failPerms["broken.perm"] = true
	ops := NewOperations(api, zerolog.Nop(), WithConcurrency(3))

	perms := []string{"worldedit.wand", "broken.perm", "essentials.fly", "essentials.home"}
	result := ops.CheckPermissions(context.Background(), GroupSubject("admin"), perms, nil)

	assert.Equal(t, 4, result.Requested)
	require.Len(t, result.Checked, 3)
	assert.Equal(t, "worldedit.wand", result.Checked[0].Permission)
	assert.Equal(t, "essentials.fly", result.Checked[1].Permission)
	assert.Equal(t, "essentials.home", result.Checked[2].Permission)
	assert.Equal(t, []string{"worldedit.wand"}, result.Granted())

	require.Len(t, result.Failed, 1)
	assert.Equal(t, "broken.perm", result.Failed[0].Permission)
	assert.ErrorIs(t, result.Failed[0], errBoom)
}

func TestCheckPermissionsWithQuery(t *testing.T) {
	api := newMockAPI()
	ops := NewOperations(api, zerolog.Nop())

	query := &luckperms.QueryOptions{Mode: luckperms.QueryModeNonContextual}
	result := ops.CheckPermissions(context.Background(), GroupSubject("admin"), []string{"a", "b"}, query)
	assert.Len(t, result.Checked, 2)
	assert.Equal(t, []string{"CheckGroupPermissionQuery", "CheckGroupPermissionQuery"}, api.calls)

	empty := ops.CheckPermissions(context.Background(), GroupSubject("admin"), nil, nil)
	assert.Zero(t, empty.Requested)
	assert.Empty(t, empty.Checked)
}

func TestFilterNodes(t *testing.T) {
	ops := NewOperations(newMockAPI(), zerolog.Nop())
	nodes := []luckperms.Node{
		luckperms.NewNode("group.admin", luckperms.NodeTypeInheritance, true),
		luckperms.NewNode("essentials.fly", luckperms.NodeTypeRegexPermission, true),
	}

	all, err := ops.FilterNodes(nodes, nil)
	require.NoError(t, err)
	assert.Equal(t, nodes, all)

	f, err := filter.Compile(`isType("inheritance")`)
	require.NoError(t, err)
	matched, err := ops.FilterNodes(nodes, f)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "group.admin", matched[0].Key)
}

func TestNodesAndMetadata(t *testing.T) {
	api := newMockAPI()
	api.nodes[aliceID.String()] = []luckperms.Node{luckperms.NewNode("a", luckperms.NodeTypeMeta, true)}
	ops := NewOperations(api, zerolog.Nop())
	ctx := context.Background()

	alice := UserSubject(luckperms.UserIdentifier{UniqueID: aliceID, Username: "Alice"})
	nodes, err := ops.Nodes(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)

	_, err = ops.Nodes(ctx, GroupSubject("admin"))
	require.NoError(t, err)
	assert.Equal(t, []string{"GetUserNodes", "GetGroupNodes"}, api.calls)

	metas, err := ops.Metadata(ctx, GroupSubject("admin"))
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "3", metas[0].Meta["rank"])

	metas, err = ops.Metadata(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "1", metas[0].Meta["rank"])
}

func TestMutationsWithoutActor(t *testing.T) {
	api := newMockAPI()
	ops := NewOperations(api, zerolog.Nop())
	ctx := context.Background()

	node := luckperms.NewNode("essentials.fly", luckperms.NodeTypeRegexPermission, true)
	require.NoError(t, ops.AddNodes(ctx, GroupSubject("admin"), []luckperms.Node{node}))
	require.NoError(t, ops.RemoveNodes(ctx, GroupSubject("admin"), []luckperms.Node{node}))
	assert.Empty(t, api.actions)

	// Empty input makes no request
	require.NoError(t, ops.AddNodes(ctx, GroupSubject("admin"), nil))
	assert.Equal(t, []string{"AddGroupNodes", "DeleteGroupNodes"}, api.calls)
}

func TestAuditedMutations(t *testing.T) {
	api := newMockAPI()
	now := time.Unix(1_700_000_000, 0)
	ops := NewOperations(api, zerolog.Nop(), WithActor(actorID, "console"), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	alice := luckperms.UserIdentifier{UniqueID: aliceID, Username: "Alice"}
	node := luckperms.NewNode("essentials.fly", luckperms.NodeTypeRegexPermission, true)
	node.Context = []string{"server=survival"}

	require.NoError(t, ops.AddNodes(ctx, UserSubject(alice), []luckperms.Node{node}))
	require.NoError(t, ops.RemoveNodes(ctx, UserSubject(alice), []luckperms.Node{node}))
	require.NoError(t, ops.SetNodes(ctx, GroupSubject("admin"), []luckperms.Node{node}))

	resp, err := ops.Promote(ctx, alice, "staff")
	require.NoError(t, err)
	assert.True(t, resp.Success)

	// A failed track move records nothing
	resp, err = ops.Demote(ctx, alice, "staff")
	require.NoError(t, err)
	assert.False(t, resp.Success)

	_, err = ops.CreateGroup(ctx, "builder")
	require.NoError(t, err)
	require.NoError(t, ops.DeleteGroup(ctx, "builder"))
	require.NoError(t, ops.DeleteUser(ctx, alice))

	descriptions := make([]string, 0, len(api.actions))
	for _, action := range api.actions {
		assert.Equal(t, luckperms.ActionSource{UniqueID: actorID, Name: "console"}, action.Source)
		require.NotNil(t, action.Timestamp)
		assert.Equal(t, uint64(1_700_000_000), *action.Timestamp)
		descriptions = append(descriptions, action.Description)
	}

	assert.Equal(t, []string{
		"permission set essentials.fly true server=survival",
		"permission unset essentials.fly",
		"permission clear, set 1 nodes",
		"promote staff (default -> helper)",
		"create",
		"delete",
		"clear",
	}, descriptions)

	userTarget := api.actions[0].Target
	assert.Equal(t, luckperms.ActionTargetUser, userTarget.Type)
	require.NotNil(t, userTarget.UniqueID)
	assert.Equal(t, aliceID, *userTarget.UniqueID)
	assert.Equal(t, "Alice", userTarget.Name)

	groupTarget := api.actions[2].Target
	assert.Equal(t, luckperms.ActionTarget{Name: "admin", Type: luckperms.ActionTargetGroup}, groupTarget)
}

func TestFailedMutationRecordsNothing(t *testing.T) {
	api := newMockAPI()
	ops := NewOperations(api, zerolog.Nop(), WithActor(actorID, "console"))
	ctx := context.Background()

	err := ops.AddNodes(ctx, GroupSubject("broken"), []luckperms.Node{luckperms.NewNode("a", luckperms.NodeTypeMeta, true)})
	assert.ErrorIs(t, err, errBoom)

	err = ops.DeleteGroup(ctx, "default")
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, api.actions)
}

func TestActionSubmissionFailureIsNotReturned(t *testing.T) {
	api := newMockAPI()
	api.actionErr = errBoom
	ops := NewOperations(api, zerolog.Nop(), WithActor(actorID, "console"))

	_, err := ops.CreateGroup(context.Background(), "builder")
	assert.NoError(t, err)
}

func TestSubmitActionKeepsTimestamp(t *testing.T) {
	api := newMockAPI()
	ops := NewOperations(api, zerolog.Nop())

	ts := uint64(42)
	require.NoError(t, ops.SubmitAction(context.Background(), luckperms.Action{Timestamp: &ts, Description: "manual"}))
	require.Len(t, api.actions, 1)
	assert.Equal(t, uint64(42), *api.actions[0].Timestamp)
}
