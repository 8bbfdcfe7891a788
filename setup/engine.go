package setup

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/oklahomer/go-kasumi/logger"
)

const reasonAlreadyExists = "already exists"

// Result is the outcome of a reconciliation run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string `json:"run_id"`

	DryRun bool `json:"dry_run"`

	// Success is false only when the run was aborted by a fatal error.
	// Individual failed actions do not affect it.
	Success bool `json:"success"`

	// Actions lists every planned or attempted operation in processing order.
	Actions []Action `json:"actions"`
}

// Engine reconciles a Configuration against the live state behind a Gateway.
// An Engine holds no per-run state, so one Engine may serve consecutive or concurrent runs.
type Engine struct {
	gateway Gateway
}

// NewEngine creates an Engine that talks to the remote platform through the given Gateway.
func NewEngine(gateway Gateway) *Engine {
	return &Engine{
		gateway: gateway,
	}
}

// Reconcile creates every role, category and channel declared in cfg that does not exist yet.
//
// Roles are processed first, in declaration order, then each category immediately followed
// by its channels. A failure on one resource is recorded and processing continues.
// When dryRun is true, every declared resource is recorded as planned and the Gateway is
// never called.
//
// A *ValidationError is returned before any Gateway call when cfg is malformed.
// A fatal error stops the run; the returned Result then holds the actions recorded so far.
func (e *Engine) Reconcile(ctx context.Context, cfg *Configuration, dryRun bool) (*Result, error) {
	result := &Result{
		RunID:   uuid.NewString(),
		DryRun:  dryRun,
		Actions: []Action{},
	}

	if err := cfg.Validate(); err != nil {
		return result, err
	}

	r := newRun(e.gateway)
	var err error
	if dryRun {
		r.plan(cfg)
	} else {
		err = r.apply(ctx, cfg)
	}
	result.Actions = r.ledger.Actions()

	if err != nil {
		logger.Errorf("Reconciliation %s aborted after %d actions: %+v", result.RunID, len(result.Actions), err)
		return result, err
	}

	result.Success = true
	logger.Infof("Reconciliation %s finished (dry run: %t): %s", result.RunID, dryRun, Summarize(result.Actions))
	return result, nil
}

// run holds the state of a single reconciliation.
type run struct {
	gateway    Gateway
	ledger     *Ledger
	roles      map[string]Identity
	categories map[string]Identity
	channels   map[ResourceKey]Identity
	resolver   *PermissionResolver
}

func newRun(gateway Gateway) *run {
	roles := map[string]Identity{}
	return &run{
		gateway:    gateway,
		ledger:     NewLedger(),
		roles:      roles,
		categories: map[string]Identity{},
		channels:   map[ResourceKey]Identity{},
		resolver:   NewPermissionResolver(gateway, roles),
	}
}

func (r *run) plan(cfg *Configuration) {
	for _, role := range cfg.Roles {
		r.record(RoleKey(role.Name), Action{Kind: KindRole, Name: role.Name, Status: StatusPlanned})
	}

	for _, category := range cfg.Categories {
		r.record(CategoryKey(category.Name), Action{Kind: KindCategory, Name: category.Name, Status: StatusPlanned})
		for _, channel := range category.Channels {
			r.record(ChannelKey(category.Name, channel), Action{Kind: KindChannel, Name: channel.Name, Parent: category.Name, Status: StatusPlanned})
		}
	}
}

func (r *run) apply(ctx context.Context, cfg *Configuration) error {
	for _, role := range cfg.Roles {
		if err := r.applyRole(ctx, role); err != nil {
			return err
		}
	}

	for _, category := range cfg.Categories {
		if err := r.applyCategory(ctx, category); err != nil {
			return err
		}
	}

	return nil
}

func (r *run) applyRole(ctx context.Context, role RoleSpec) error {
	action := Action{Kind: KindRole, Name: role.Name, Status: StatusPending}

	identity, ok, err := r.ensure(ctx, RoleKey(role.Name), action,
		func() (Identity, bool, error) {
			if known, ok := r.roles[role.Name]; ok {
				return known, true, nil
			}
			return r.gateway.FindRoleByName(ctx, role.Name)
		},
		func() (Identity, error) {
			return r.gateway.CreateRole(ctx, role)
		},
	)
	if ok {
		r.roles[role.Name] = identity
	}
	return err
}

func (r *run) applyCategory(ctx context.Context, category CategorySpec) error {
	action := Action{Kind: KindCategory, Name: category.Name, Status: StatusPending}

	identity, ok, err := r.ensure(ctx, CategoryKey(category.Name), action,
		func() (Identity, bool, error) {
			if known, ok := r.categories[category.Name]; ok {
				return known, true, nil
			}
			return r.gateway.FindCategoryByName(ctx, category.Name)
		},
		func() (Identity, error) {
			var overwrites []PermissionOverwrite
			if category.Locked {
				var err error
				overwrites, err = r.resolver.Resolve(ctx, category.AllowedRoles, true)
				if err != nil {
					return Identity{}, err
				}
			}
			return r.gateway.CreateCategory(ctx, category.Name, overwrites)
		},
	)
	if err != nil {
		return err
	}

	if !ok {
		// Each channel still gets its own entry so the report accounts for it.
		for _, channel := range category.Channels {
			r.record(ChannelKey(category.Name, channel), Action{
				Kind:   KindChannel,
				Name:   channel.Name,
				Parent: category.Name,
				Status: StatusFailed,
				Error:  fmt.Sprintf("parent category %q is unavailable", category.Name),
			})
		}
		return nil
	}

	r.categories[category.Name] = identity
	for _, channel := range category.Channels {
		if err := r.applyChannel(ctx, category, identity, channel); err != nil {
			return err
		}
	}

	return nil
}

func (r *run) applyChannel(ctx context.Context, category CategorySpec, parent Identity, channel ChannelSpec) error {
	key := ChannelKey(category.Name, channel)
	action := Action{Kind: KindChannel, Name: channel.Name, Parent: category.Name, Status: StatusPending}

	identity, ok, err := r.ensure(ctx, key, action,
		func() (Identity, bool, error) {
			if known, ok := r.channels[key]; ok {
				return known, true, nil
			}
			return r.gateway.FindChannelByName(ctx, key.Name, parent)
		},
		func() (Identity, error) {
			hide, allowed := effectiveAccess(category, channel)

			var overwrites []PermissionOverwrite
			if hide || len(allowed) > 0 {
				var err error
				overwrites, err = r.resolver.Resolve(ctx, allowed, hide)
				if err != nil {
					return Identity{}, err
				}
			}

			return r.gateway.CreateChannel(ctx, ChannelRequest{
				Name:       channel.Name,
				Type:       channel.Type,
				Parent:     parent,
				Topic:      channel.Description,
				Overwrites: overwrites,
			})
		},
	)
	if ok {
		r.channels[key] = identity
	}
	return err
}

// ensure records whether the resource already exists, was created, or failed.
// The returned bool tells whether an identity is available for the resource.
// Only fatal errors are returned.
func (r *run) ensure(ctx context.Context, key ResourceKey, action Action, find func() (Identity, bool, error), create func() (Identity, error)) (Identity, bool, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, false, err
	}

	existing, found, err := find()
	if err != nil {
		if IsFatal(err) {
			return Identity{}, false, err
		}
		action.Status = StatusFailed
		action.Error = err.Error()
		r.record(key, action)
		return Identity{}, false, nil
	}

	if found {
		action.Status = StatusSkipped
		action.Reason = reasonAlreadyExists
		r.record(key, action)
		return existing, true, nil
	}

	created, err := create()
	if err != nil {
		if IsFatal(err) {
			return Identity{}, false, err
		}
		action.Status = StatusFailed
		action.Error = err.Error()
		r.record(key, action)
		return Identity{}, false, nil
	}

	action.Status = StatusCompleted
	action.ResourceID = created.ID
	r.record(key, action)
	return created, true, nil
}

func (r *run) record(key ResourceKey, action Action) {
	logger.Debugf("%s: %s", key, action.Status)
	if err := r.ledger.Append(action); err != nil {
		// Every path above decides the status before recording.
		panic(err)
	}
}

// effectiveAccess returns whether a channel hides from everyone and which roles may access it.
// The channel's own settings win; otherwise a locked category's settings are inherited.
func effectiveAccess(category CategorySpec, channel ChannelSpec) (bool, []string) {
	hide := category.Locked
	if channel.Hidden != nil {
		hide = *channel.Hidden
	}

	var allowed []string
	switch {
	case channel.AllowedRoles != nil:
		allowed = channel.AllowedRoles

	case category.Locked:
		allowed = category.AllowedRoles
	}

	return hide, allowed
}
