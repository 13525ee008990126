package operations

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/s0up4200/lpctl/luckperms"
)

// AddNodes adds nodes to a subject, keeping any nodes already present
func (o *Operations) AddNodes(ctx context.Context, subject Subject, nodes []luckperms.Node) error {
	if len(nodes) == 0 {
		return nil
	}

	var err error
	if subject.IsUser() {
		err = o.api.AddUserNodes(ctx, subject.UniqueID, nodes)
	} else {
		_, err = o.api.AddGroupNodes(ctx, subject.Name, nodes)
	}
	if err != nil {
		return fmt.Errorf("failed to add nodes to %s: %w", subject, err)
	}

	o.logger.Info().Str("subject", subject.String()).Int("nodes", len(nodes)).Msg("Added nodes")
	for _, node := range nodes {
		o.record(ctx, subject.Target(), "permission set "+describeNode(node))
	}
	return nil
}

// RemoveNodes removes exactly the given nodes from a subject
func (o *Operations) RemoveNodes(ctx context.Context, subject Subject, nodes []luckperms.Node) error {
	if len(nodes) == 0 {
		return nil
	}

	var err error
	if subject.IsUser() {
		err = o.api.DeleteUserNodes(ctx, subject.UniqueID, nodes)
	} else {
		err = o.api.DeleteGroupNodes(ctx, subject.Name, nodes)
	}
	if err != nil {
		return fmt.Errorf("failed to remove nodes from %s: %w", subject, err)
	}

	o.logger.Info().Str("subject", subject.String()).Int("nodes", len(nodes)).Msg("Removed nodes")
	for _, node := range nodes {
		o.record(ctx, subject.Target(), "permission unset "+node.Key)
	}
	return nil
}

// SetNodes replaces every node on a subject
func (o *Operations) SetNodes(ctx context.Context, subject Subject, nodes []luckperms.Node) error {
	var err error
	if subject.IsUser() {
		err = o.api.SetUserNodes(ctx, subject.UniqueID, nodes)
	} else {
		err = o.api.SetGroupNodes(ctx, subject.Name, nodes)
	}
	if err != nil {
		return fmt.Errorf("failed to set nodes on %s: %w", subject, err)
	}

	o.logger.Info().Str("subject", subject.String()).Int("nodes", len(nodes)).Msg("Replaced nodes")
	o.record(ctx, subject.Target(), fmt.Sprintf("permission clear, set %d nodes", len(nodes)))
	return nil
}

// Promote moves a user up a track
func (o *Operations) Promote(ctx context.Context, user luckperms.UserIdentifier, track string) (*luckperms.TrackMoveResponse, error) {
	return o.moveOnTrack(ctx, user, track, "promote", o.api.PromoteUser)
}

// Demote moves a user down a track
func (o *Operations) Demote(ctx context.Context, user luckperms.UserIdentifier, track string) (*luckperms.TrackMoveResponse, error) {
	return o.moveOnTrack(ctx, user, track, "demote", o.api.DemoteUser)
}

type trackMoveFunc func(context.Context, uuid.UUID, string) (*luckperms.TrackMoveResponse, error)

func (o *Operations) moveOnTrack(ctx context.Context, user luckperms.UserIdentifier, track, verb string, move trackMoveFunc) (*luckperms.TrackMoveResponse, error) {
	resp, err := move(ctx, user.UniqueID, track)
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s on %s: %w", verb, user.Username, track, err)
	}

	o.logger.Info().
		Str("user", user.Username).
		Str("track", track).
		Bool("success", resp.Success).
		Str("status", resp.Status).
		Msgf("User %sd", verb)

	if resp.Success {
		desc := fmt.Sprintf("%s %s", verb, track)
		if resp.GroupFrom != "" || resp.GroupTo != "" {
			desc += fmt.Sprintf(" (%s -> %s)", resp.GroupFrom, resp.GroupTo)
		}
		o.record(ctx, UserSubject(user).Target(), desc)
	}
	return resp, nil
}

// CreateGroup creates a group
func (o *Operations) CreateGroup(ctx context.Context, name string) (*luckperms.Group, error) {
	group, err := o.api.CreateGroup(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create group %s: %w", name, err)
	}

	o.logger.Info().Str("group", name).Msg("Created group")
	o.record(ctx, GroupSubject(name).Target(), "create")
	return group, nil
}

// DeleteGroup deletes a group
func (o *Operations) DeleteGroup(ctx context.Context, name string) error {
	if err := o.api.DeleteGroup(ctx, name); err != nil {
		return fmt.Errorf("failed to delete group %s: %w", name, err)
	}

	o.logger.Info().Str("group", name).Msg("Deleted group")
	o.record(ctx, GroupSubject(name).Target(), "delete")
	return nil
}

// CreateUser creates or updates a user record
func (o *Operations) CreateUser(ctx context.Context, ident luckperms.UserIdentifier) (*luckperms.User, error) {
	user, err := o.api.CreateUser(ctx, ident)
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", ident.Username, err)
	}

	o.logger.Info().Str("user", ident.Username).Str("unique_id", ident.UniqueID.String()).Msg("Created user")
	o.record(ctx, UserSubject(ident).Target(), "create")
	return user, nil
}

// RenameUser changes the stored username of a user
func (o *Operations) RenameUser(ctx context.Context, ident luckperms.UserIdentifier, username string) error {
	if err := o.api.UpdateUsername(ctx, ident.UniqueID, username); err != nil {
		return fmt.Errorf("failed to rename user %s: %w", ident.Username, err)
	}

	o.logger.Info().Str("from", ident.Username).Str("to", username).Msg("Renamed user")
	o.record(ctx, UserSubject(luckperms.UserIdentifier{UniqueID: ident.UniqueID, Username: username}).Target(),
		fmt.Sprintf("rename %s -> %s", ident.Username, username))
	return nil
}

// DeleteUser deletes all stored data of a user
func (o *Operations) DeleteUser(ctx context.Context, ident luckperms.UserIdentifier) error {
	if err := o.api.DeleteUser(ctx, ident.UniqueID); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", ident.Username, err)
	}

	o.logger.Info().Str("user", ident.Username).Msg("Deleted user")
	o.record(ctx, UserSubject(ident).Target(), "clear")
	return nil
}

// SubmitAction sends an arbitrary action log entry, stamping the time if missing
func (o *Operations) SubmitAction(ctx context.Context, action luckperms.Action) error {
	if action.Timestamp == nil {
		ts := uint64(o.now().Unix())
		action.Timestamp = &ts
	}
	return o.api.SubmitAction(ctx, action)
}

// record submits an action for a completed mutation when an actor is configured.
// The mutation already happened, so a failure here is only logged.
func (o *Operations) record(ctx context.Context, target luckperms.ActionTarget, description string) {
	if o.actor == nil {
		return
	}

	err := o.SubmitAction(ctx, luckperms.Action{
		Source:      *o.actor,
		Target:      target,
		Description: description,
	})
	if err != nil {
		o.logger.Warn().
			Err(err).
			Str("target", target.Name).
			Str("description", description).
			Msg("Failed to submit action")
	}
}

func describeNode(node luckperms.Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %t", node.Key, node.Value)
	for _, ctx := range node.Context {
		sb.WriteString(" ")
		sb.WriteString(ctx)
	}
	if node.IsTemporary() {
		fmt.Fprintf(&sb, " (expires %d)", *node.Expiry)
	}
	return sb.String()
}
