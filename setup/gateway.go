package setup

import "context"

// Identity is the identity of a live resource on the remote platform.
type Identity struct {
	ID   string
	Name string
}

// ChannelRequest holds what Gateway.CreateChannel needs to create a channel.
type ChannelRequest struct {
	Name       string
	Type       ChannelType
	Parent     Identity
	Topic      string
	Overwrites []PermissionOverwrite
}

// Gateway is the only component that talks to the remote platform.
// Find methods return false when no resource matches.
//
// Errors wrapping ErrUnauthorized abort a reconciliation run. Any other error is
// recorded against the resource being processed.
type Gateway interface {
	FindRoleByName(ctx context.Context, name string) (Identity, bool, error)
	CreateRole(ctx context.Context, role RoleSpec) (Identity, error)
	FindCategoryByName(ctx context.Context, name string) (Identity, bool, error)
	CreateCategory(ctx context.Context, name string, overwrites []PermissionOverwrite) (Identity, error)
	FindChannelByName(ctx context.Context, name string, parent Identity) (Identity, bool, error)
	CreateChannel(ctx context.Context, req ChannelRequest) (Identity, error)

	// EveryonePrincipal returns the implicit principal every guild member belongs to.
	EveryonePrincipal() Identity
}
