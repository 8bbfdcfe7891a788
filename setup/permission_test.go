package setup

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPermissionResolver_Resolve(t *testing.T) {
	t.Run("hidden with allowed role", func(t *testing.T) {
		gateway := newFakeGateway()
		staff := gateway.addRole("Staff")

		overwrites, err := NewPermissionResolver(gateway, nil).Resolve(context.Background(), []string{"Staff"}, true)
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}

		if len(overwrites) != 2 {
			t.Fatalf("Expected 2 overwrites, got %d", len(overwrites))
		}

		everyone := overwrites[0]
		if !everyone.Everyone || everyone.Principal != gateway.EveryonePrincipal() {
			t.Errorf("Expected first overwrite to target everyone, got %+v", everyone)
		}
		if diff := cmp.Diff([]Permission{PermissionViewChannel, PermissionSendMessages, PermissionConnect}, everyone.Deny); diff != "" {
			t.Errorf("Unexpected deny set (-want +got):\n%s", diff)
		}
		if len(everyone.Allow) != 0 {
			t.Errorf("Expected empty allow set, got %v", everyone.Allow)
		}

		role := overwrites[1]
		if role.Everyone || role.Principal != staff {
			t.Errorf("Expected second overwrite to target Staff, got %+v", role)
		}
		if diff := cmp.Diff([]Permission{PermissionViewChannel, PermissionSendMessages, PermissionConnect, PermissionReadMessageHistory}, role.Allow); diff != "" {
			t.Errorf("Unexpected allow set (-want +got):\n%s", diff)
		}
	})

	t.Run("not hidden", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.addRole("Staff")

		overwrites, err := NewPermissionResolver(gateway, nil).Resolve(context.Background(), []string{"Staff"}, false)
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}

		if len(overwrites) != 1 || overwrites[0].Everyone {
			t.Errorf("Expected only the role overwrite, got %+v", overwrites)
		}
	})

	t.Run("cache is consulted first and filled by live lookups", func(t *testing.T) {
		gateway := newFakeGateway()
		live := gateway.addRole("Live")
		cache := map[string]Identity{"Cached": {ID: "cached-id", Name: "Cached"}}

		resolver := NewPermissionResolver(gateway, cache)
		overwrites, err := resolver.Resolve(context.Background(), []string{"Cached", "Live", "Live"}, false)
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}

		var principals []string
		for _, o := range overwrites {
			principals = append(principals, o.Principal.ID)
		}
		if diff := cmp.Diff([]string{"cached-id", live.ID}, principals); diff != "" {
			t.Errorf("Unexpected principals (-want +got):\n%s", diff)
		}

		if diff := cmp.Diff([]string{"FindRoleByName"}, gateway.calls); diff != "" {
			t.Errorf("Unexpected gateway calls (-want +got):\n%s", diff)
		}

		if cache["Live"] != live {
			t.Error("Expected live lookup to be cached")
		}
	})

	t.Run("unknown and unreachable roles are omitted", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.findRoleByNameFunc = func(name string) (Identity, bool, error) {
			if name == "Flaky" {
				return Identity{}, false, errors.New("timeout")
			}
			return Identity{}, false, nil
		}

		overwrites, err := NewPermissionResolver(gateway, nil).Resolve(context.Background(), []string{"Ghost", "Flaky"}, true)
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}

		if len(overwrites) != 1 || !overwrites[0].Everyone {
			t.Errorf("Expected only the everyone overwrite, got %+v", overwrites)
		}
	})

	t.Run("unauthorized lookup is returned", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.findRoleByNameFunc = func(string) (Identity, bool, error) {
			return Identity{}, false, fmt.Errorf("lookup: %w", ErrUnauthorized)
		}

		_, err := NewPermissionResolver(gateway, nil).Resolve(context.Background(), []string{"Staff"}, true)
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Expected ErrUnauthorized, got %+v", err)
		}
	})
}
