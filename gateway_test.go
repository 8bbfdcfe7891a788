package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"

	"github.com/oklahomer/go-sarah-guildsetup/setup"
)

func TestPermissionBits(t *testing.T) {
	for _, p := range setup.Permissions {
		if PermissionBits([]setup.Permission{p}) == 0 {
			t.Errorf("Permission %q has no Discord bit", p)
		}
	}

	bits := PermissionBits([]setup.Permission{setup.PermissionViewChannel, setup.PermissionConnect})
	if bits != discordgo.PermissionViewChannel|discordgo.PermissionVoiceConnect {
		t.Errorf("Unexpected bits %d", bits)
	}

	if PermissionBits(nil) != 0 {
		t.Error("Expected no bits for no permissions")
	}
}

func TestGateway_FindRoleByName(t *testing.T) {
	mock := &mockSession{
		guildRolesFunc: func(guildID string) ([]*discordgo.Role, error) {
			if guildID != "guild-1" {
				t.Errorf("Unexpected guild %q", guildID)
			}
			return []*discordgo.Role{
				{ID: "r-1", Name: "@everyone"},
				{ID: "r-2", Name: "Staff"},
				{ID: "r-3", Name: "Staff"},
			}, nil
		},
	}
	gateway := &Gateway{guildID: "guild-1", session: mock}

	identity, found, err := gateway.FindRoleByName(context.Background(), "Staff")
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if !found || identity.ID != "r-2" {
		t.Errorf("Expected the first matching role, got %+v (found: %t)", identity, found)
	}

	_, found, err = gateway.FindRoleByName(context.Background(), "staff")
	if err != nil || found {
		t.Errorf("Role names must match exactly, got found=%t err=%+v", found, err)
	}
}

func TestGateway_CreateRole(t *testing.T) {
	var got *discordgo.RoleParams
	mock := &mockSession{
		guildRoleCreateFunc: func(_ string, data *discordgo.RoleParams) (*discordgo.Role, error) {
			got = data
			return &discordgo.Role{ID: "r-9", Name: data.Name}, nil
		},
	}
	gateway := &Gateway{guildID: "guild-1", session: mock}

	identity, err := gateway.CreateRole(context.Background(), setup.RoleSpec{
		Name:        "Pilgrim",
		Color:       "#DDA0DD",
		Hoist:       true,
		Permissions: []setup.Permission{setup.PermissionSendMessages},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}

	if identity != (setup.Identity{ID: "r-9", Name: "Pilgrim"}) {
		t.Errorf("Unexpected identity %+v", identity)
	}

	if got.Color == nil || *got.Color != 0xDDA0DD {
		t.Errorf("Unexpected color %v", got.Color)
	}
	if got.Hoist == nil || !*got.Hoist || got.Mentionable == nil || *got.Mentionable {
		t.Errorf("Unexpected flags %+v", got)
	}
	if got.Permissions == nil || *got.Permissions != discordgo.PermissionSendMessages {
		t.Errorf("Unexpected permissions %v", got.Permissions)
	}

	t.Run("without color and permissions", func(t *testing.T) {
		if _, err := gateway.CreateRole(context.Background(), setup.RoleSpec{Name: "Plain"}); err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}
		if got.Color != nil || got.Permissions != nil {
			t.Errorf("Expected Discord defaults to be kept, got %+v", got)
		}
	})
}

func TestGateway_FindCategoryByName(t *testing.T) {
	mock := &mockSession{
		guildChannelsFunc: func(string) ([]*discordgo.Channel, error) {
			return []*discordgo.Channel{
				{ID: "c-1", Name: "Lobby", Type: discordgo.ChannelTypeGuildText},
				{ID: "c-2", Name: "Lobby", Type: discordgo.ChannelTypeGuildCategory},
			}, nil
		},
	}
	gateway := &Gateway{guildID: "guild-1", session: mock}

	identity, found, err := gateway.FindCategoryByName(context.Background(), "Lobby")
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if !found || identity.ID != "c-2" {
		t.Errorf("Expected the category, got %+v (found: %t)", identity, found)
	}
}

func TestGateway_FindChannelByName(t *testing.T) {
	mock := &mockSession{
		guildChannelsFunc: func(string) ([]*discordgo.Channel, error) {
			return []*discordgo.Channel{
				{ID: "c-1", Name: "chat", Type: discordgo.ChannelTypeGuildText, ParentID: "other"},
				{ID: "c-2", Name: "chat", Type: discordgo.ChannelTypeGuildCategory},
				{ID: "c-3", Name: "chat", Type: discordgo.ChannelTypeGuildText, ParentID: "parent-1"},
			}, nil
		},
	}
	gateway := &Gateway{guildID: "guild-1", session: mock}

	identity, found, err := gateway.FindChannelByName(context.Background(), "chat", setup.Identity{ID: "parent-1"})
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if !found || identity.ID != "c-3" {
		t.Errorf("Expected the channel under the parent, got %+v (found: %t)", identity, found)
	}

	_, found, _ = gateway.FindChannelByName(context.Background(), "chat", setup.Identity{ID: "parent-2"})
	if found {
		t.Error("Channels under other parents must not match")
	}
}

func TestGateway_CreateCategory(t *testing.T) {
	var got discordgo.GuildChannelCreateData
	mock := &mockSession{
		guildChannelCreateComplexFunc: func(_ string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
			got = data
			return &discordgo.Channel{ID: "cat-1", Name: data.Name}, nil
		},
	}
	gateway := &Gateway{guildID: "guild-1", session: mock}

	overwrites := []setup.PermissionOverwrite{
		{Principal: gateway.EveryonePrincipal(), Everyone: true, Deny: []setup.Permission{setup.PermissionViewChannel}},
		{Principal: setup.Identity{ID: "r-2", Name: "Staff"}, Allow: []setup.Permission{setup.PermissionViewChannel, setup.PermissionSendMessages}},
	}
	if _, err := gateway.CreateCategory(context.Background(), "Sanctum", overwrites); err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}

	expected := discordgo.GuildChannelCreateData{
		Name: "Sanctum",
		Type: discordgo.ChannelTypeGuildCategory,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: "guild-1", Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
			{ID: "r-2", Type: discordgo.PermissionOverwriteTypeRole, Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages},
		},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("Unexpected request (-want +got):\n%s", diff)
	}
}

func TestGateway_CreateChannel(t *testing.T) {
	tests := []struct {
		name     string
		req      setup.ChannelRequest
		expected discordgo.GuildChannelCreateData
	}{
		{
			name: "text",
			req:  setup.ChannelRequest{Name: "temple-entrance", Type: setup.ChannelTypeText, Parent: setup.Identity{ID: "cat-1"}, Topic: "Welcome"},
			expected: discordgo.GuildChannelCreateData{
				Name:     "temple-entrance",
				Type:     discordgo.ChannelTypeGuildText,
				ParentID: "cat-1",
				Topic:    "Welcome",
			},
		},
		{
			name: "voice",
			req:  setup.ChannelRequest{Name: "Meditation Hall", Type: setup.ChannelTypeVoice, Parent: setup.Identity{ID: "cat-1"}, Topic: "ignored"},
			expected: discordgo.GuildChannelCreateData{
				Name:     "Meditation Hall",
				Type:     discordgo.ChannelTypeGuildVoice,
				ParentID: "cat-1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got discordgo.GuildChannelCreateData
			mock := &mockSession{
				guildChannelCreateComplexFunc: func(_ string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
					got = data
					return &discordgo.Channel{ID: "ch-9", Name: data.Name}, nil
				},
			}
			gateway := &Gateway{guildID: "guild-1", session: mock}

			identity, err := gateway.CreateChannel(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Unexpected error: %+v", err)
			}
			if identity.ID != "ch-9" {
				t.Errorf("Unexpected identity %+v", identity)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Unexpected request (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGateway_errors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{name: "unauthorized sentinel", err: discordgo.ErrUnauthorized, fatal: true},
		{name: "401 response", err: &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusUnauthorized, Status: "401 Unauthorized"}}, fatal: true},
		{name: "403 response", err: &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden, Status: "403 Forbidden"}}, fatal: false},
		{name: "network error", err: fmt.Errorf("connection reset"), fatal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockSession{
				guildRolesFunc: func(string) ([]*discordgo.Role, error) {
					return nil, tt.err
				},
				guildChannelCreateComplexFunc: func(string, discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
					return nil, tt.err
				},
			}
			gateway := &Gateway{guildID: "guild-1", session: mock}

			_, _, findErr := gateway.FindRoleByName(context.Background(), "Staff")
			_, createErr := gateway.CreateCategory(context.Background(), "Lobby", nil)

			for _, err := range []error{findErr, createErr} {
				if !errors.Is(err, tt.err) {
					t.Errorf("Expected the original error to be wrapped, got %+v", err)
				}
				if setup.IsFatal(err) != tt.fatal {
					t.Errorf("Expected fatal=%t for %+v", tt.fatal, err)
				}
			}
		})
	}
}

func TestAdapter_Gateway(t *testing.T) {
	adapter := &Adapter{config: NewConfig(), session: &mockSession{}}

	gateway := adapter.Gateway("guild-7")
	if gateway.EveryonePrincipal().ID != "guild-7" {
		t.Errorf("Unexpected @everyone principal %+v", gateway.EveryonePrincipal())
	}
}
