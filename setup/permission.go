package setup

import (
	"context"

	"github.com/oklahomer/go-kasumi/logger"
)

var (
	// hiddenDeny is denied to everyone on a hidden category or channel.
	hiddenDeny = []Permission{PermissionViewChannel, PermissionSendMessages, PermissionConnect}

	// allowedGrant is granted to each allowed role on a hidden category or channel.
	allowedGrant = []Permission{PermissionViewChannel, PermissionSendMessages, PermissionConnect, PermissionReadMessageHistory}
)

// PermissionOverwrite is a per-principal allow/deny exception on a category or channel.
type PermissionOverwrite struct {
	Principal Identity

	// Everyone is true when Principal is the guild's implicit everyone principal.
	Everyone bool

	Allow []Permission
	Deny  []Permission
}

// PermissionResolver derives permission overwrites from visibility flags and role names.
// Role identities are taken from the run's cache first and looked up live otherwise.
type PermissionResolver struct {
	gateway Gateway
	roles   map[string]Identity
}

// NewPermissionResolver creates a PermissionResolver that reads and fills the given role cache.
// A nil cache is replaced with an empty one.
func NewPermissionResolver(gateway Gateway, roles map[string]Identity) *PermissionResolver {
	if roles == nil {
		roles = map[string]Identity{}
	}
	return &PermissionResolver{
		gateway: gateway,
		roles:   roles,
	}
}

// Resolve returns the overwrites for the given allow-list.
// When hideFromEveryone is true, the first overwrite denies access to everyone.
// Allowed roles follow in the given order; names that resolve to no role are skipped.
// Only fatal gateway errors are returned.
func (r *PermissionResolver) Resolve(ctx context.Context, allowedRoleNames []string, hideFromEveryone bool) ([]PermissionOverwrite, error) {
	overwrites := make([]PermissionOverwrite, 0, len(allowedRoleNames)+1)

	if hideFromEveryone {
		overwrites = append(overwrites, PermissionOverwrite{
			Principal: r.gateway.EveryonePrincipal(),
			Everyone:  true,
			Deny:      append([]Permission(nil), hiddenDeny...),
		})
	}

	seen := map[string]bool{}
	for _, name := range allowedRoleNames {
		if seen[name] {
			continue
		}
		seen[name] = true

		role, ok, err := r.role(ctx, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Warnf("Role %q is not found. It is omitted from the allow-list.", name)
			continue
		}

		overwrites = append(overwrites, PermissionOverwrite{
			Principal: role,
			Allow:     append([]Permission(nil), allowedGrant...),
		})
	}

	return overwrites, nil
}

func (r *PermissionResolver) role(ctx context.Context, name string) (Identity, bool, error) {
	if role, ok := r.roles[name]; ok {
		return role, true, nil
	}

	role, ok, err := r.gateway.FindRoleByName(ctx, name)
	if err != nil {
		if IsFatal(err) {
			return Identity{}, false, err
		}
		logger.Warnf("Failed to look up role %q: %+v", name, err)
		return Identity{}, false, nil
	}
	if ok {
		r.roles[name] = role
	}

	return role, ok, nil
}
