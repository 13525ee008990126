package operations

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/lpctl/luckperms"
)

// ListUserIdentifiers lists every known user and resolves their usernames concurrently.
// Users whose lookup fails are logged and left out.
func (o *Operations) ListUserIdentifiers(ctx context.Context) ([]luckperms.UserIdentifier, error) {
	ids, err := o.api.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []luckperms.UserIdentifier{}, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	var mu sync.Mutex
	idents := make([]luckperms.UserIdentifier, 0, len(ids))

	for _, id := range ids {
		g.Go(func() error {
			ident, err := o.api.LookupUniqueID(ctx, id)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				o.logger.Warn().
					Err(err).
					Str("unique_id", id.String()).
					Msg("Failed to look up user")
				// Continue with the remaining users
				return nil
			}

			mu.Lock()
			idents = append(idents, *ident)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(idents, func(a, b luckperms.UserIdentifier) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.Username), strings.ToLower(b.Username)),
			cmp.Compare(a.UniqueID.String(), b.UniqueID.String()),
		)
	})

	return idents, nil
}

// CheckPermissions checks several permissions on one subject concurrently.
// A failed check is reported in the result and never aborts the others.
func (o *Operations) CheckPermissions(ctx context.Context, subject Subject, permissions []string, query *luckperms.QueryOptions) BatchCheckResult {
	result := BatchCheckResult{
		Subject:   subject,
		Requested: len(permissions),
	}

	if len(permissions) == 0 {
		return result
	}

	type outcome struct {
		check *luckperms.PermissionCheckResult
		err   error
	}
	outcomes := make([]outcome, len(permissions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, permission := range permissions {
		g.Go(func() error {
			check, err := o.checkPermission(ctx, subject, permission, query)
			// Each goroutine owns its slot
			outcomes[i] = outcome{check: check, err: err}
			return nil // Don't stop on individual errors
		})
	}

	g.Wait()

	for i, permission := range permissions {
		if err := outcomes[i].err; err != nil {
			result.Failed = append(result.Failed, CheckError{Permission: permission, Err: err})
			continue
		}
		result.Checked = append(result.Checked, PermissionOutcome{Permission: permission, Result: *outcomes[i].check})
	}

	o.logger.Debug().
		Str("subject", subject.String()).
		Int("checked", len(result.Checked)).
		Int("failed", len(result.Failed)).
		Msg("Batch permission check complete")

	return result
}

func (o *Operations) checkPermission(ctx context.Context, subject Subject, permission string, query *luckperms.QueryOptions) (*luckperms.PermissionCheckResult, error) {
	if query != nil {
		req := luckperms.PermissionCheckRequest{Permission: permission, QueryOptions: *query}
		if subject.IsUser() {
			return o.api.CheckUserPermissionQuery(ctx, subject.UniqueID, req)
		}
		return o.api.CheckGroupPermissionQuery(ctx, subject.Name, req)
	}

	if subject.IsUser() {
		return o.api.CheckUserPermission(ctx, subject.UniqueID, permission)
	}
	return o.api.CheckGroupPermission(ctx, subject.Name, permission)
}
