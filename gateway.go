package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-kasumi/logger"

	"github.com/oklahomer/go-sarah-guildsetup/setup"
)

// guildSession abstracts the discordgo.Session methods used by Gateway.
// *discordgo.Session satisfies this interface.
type guildSession interface {
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// permissionBits maps each configuration permission token to its Discord permission bit.
var permissionBits = map[setup.Permission]int64{
	setup.PermissionAdministrator:      discordgo.PermissionAdministrator,
	setup.PermissionManageChannels:     discordgo.PermissionManageChannels,
	setup.PermissionManageRoles:        discordgo.PermissionManageRoles,
	setup.PermissionManageMessages:     discordgo.PermissionManageMessages,
	setup.PermissionKickMembers:        discordgo.PermissionKickMembers,
	setup.PermissionBanMembers:         discordgo.PermissionBanMembers,
	setup.PermissionViewChannel:        discordgo.PermissionViewChannel,
	setup.PermissionSendMessages:       discordgo.PermissionSendMessages,
	setup.PermissionConnect:            discordgo.PermissionVoiceConnect,
	setup.PermissionReadMessageHistory: discordgo.PermissionReadMessageHistory,
}

// PermissionBits combines the given permission tokens into a Discord permission bit set.
// Unknown tokens are rejected by setup.Configuration.Validate, so they never reach here.
func PermissionBits(permissions []setup.Permission) int64 {
	var bits int64
	for _, p := range permissions {
		bits |= permissionBits[p]
	}
	return bits
}

// Gateway is a setup.Gateway implementation that manages a single Discord guild.
type Gateway struct {
	guildID string
	session guildSession
}

var _ setup.Gateway = (*Gateway)(nil)

// NewGateway creates a Gateway for the given guild.
func NewGateway(session *discordgo.Session, guildID string) *Gateway {
	return &Gateway{
		guildID: guildID,
		session: session,
	}
}

// FindRoleByName returns the first guild role with the given name.
func (g *Gateway) FindRoleByName(ctx context.Context, name string) (setup.Identity, bool, error) {
	roles, err := g.session.GuildRoles(g.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return setup.Identity{}, false, classify("failed to list roles", err)
	}

	for _, role := range roles {
		if role.Name == name {
			return setup.Identity{ID: role.ID, Name: role.Name}, true, nil
		}
	}
	return setup.Identity{}, false, nil
}

// CreateRole creates a role.
func (g *Gateway) CreateRole(ctx context.Context, role setup.RoleSpec) (setup.Identity, error) {
	params := &discordgo.RoleParams{
		Name:        role.Name,
		Hoist:       &role.Hoist,
		Mentionable: &role.Mentionable,
	}

	color, ok, err := role.ColorValue()
	if err != nil {
		return setup.Identity{}, err
	}
	if ok {
		params.Color = &color
	}

	if len(role.Permissions) > 0 {
		bits := PermissionBits(role.Permissions)
		params.Permissions = &bits
	}

	created, err := g.session.GuildRoleCreate(g.guildID, params, discordgo.WithContext(ctx))
	if err != nil {
		return setup.Identity{}, classify("failed to create role", err)
	}

	logger.Infof("Created role %q (%s) in guild %s", created.Name, created.ID, g.guildID)
	return setup.Identity{ID: created.ID, Name: created.Name}, nil
}

// FindCategoryByName returns the first category with the given name.
func (g *Gateway) FindCategoryByName(ctx context.Context, name string) (setup.Identity, bool, error) {
	return g.findChannel(ctx, func(ch *discordgo.Channel) bool {
		return ch.Type == discordgo.ChannelTypeGuildCategory && ch.Name == name
	})
}

// CreateCategory creates a category with the given permission overwrites.
func (g *Gateway) CreateCategory(ctx context.Context, name string, overwrites []setup.PermissionOverwrite) (setup.Identity, error) {
	return g.createChannel(ctx, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildCategory,
		PermissionOverwrites: convertOverwrites(overwrites),
	})
}

// FindChannelByName returns the first non-category channel with the given name under parent.
func (g *Gateway) FindChannelByName(ctx context.Context, name string, parent setup.Identity) (setup.Identity, bool, error) {
	return g.findChannel(ctx, func(ch *discordgo.Channel) bool {
		return ch.Type != discordgo.ChannelTypeGuildCategory && ch.ParentID == parent.ID && ch.Name == name
	})
}

// CreateChannel creates a text or voice channel under the requested category.
func (g *Gateway) CreateChannel(ctx context.Context, req setup.ChannelRequest) (setup.Identity, error) {
	data := discordgo.GuildChannelCreateData{
		Name:                 req.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             req.Parent.ID,
		PermissionOverwrites: convertOverwrites(req.Overwrites),
	}

	switch req.Type {
	case setup.ChannelTypeVoice:
		data.Type = discordgo.ChannelTypeGuildVoice

	default:
		// Voice channels have no topic.
		data.Topic = req.Topic
	}

	return g.createChannel(ctx, data)
}

// EveryonePrincipal returns the @everyone role, whose ID equals the guild ID.
func (g *Gateway) EveryonePrincipal() setup.Identity {
	return setup.Identity{ID: g.guildID, Name: "@everyone"}
}

func (g *Gateway) findChannel(ctx context.Context, match func(*discordgo.Channel) bool) (setup.Identity, bool, error) {
	channels, err := g.session.GuildChannels(g.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return setup.Identity{}, false, classify("failed to list channels", err)
	}

	for _, ch := range channels {
		if match(ch) {
			return setup.Identity{ID: ch.ID, Name: ch.Name}, true, nil
		}
	}
	return setup.Identity{}, false, nil
}

func (g *Gateway) createChannel(ctx context.Context, data discordgo.GuildChannelCreateData) (setup.Identity, error) {
	created, err := g.session.GuildChannelCreateComplex(g.guildID, data, discordgo.WithContext(ctx))
	if err != nil {
		return setup.Identity{}, classify("failed to create channel", err)
	}

	logger.Infof("Created channel %q (%s) in guild %s", created.Name, created.ID, g.guildID)
	return setup.Identity{ID: created.ID, Name: created.Name}, nil
}

func convertOverwrites(overwrites []setup.PermissionOverwrite) []*discordgo.PermissionOverwrite {
	if len(overwrites) == 0 {
		return nil
	}

	converted := make([]*discordgo.PermissionOverwrite, 0, len(overwrites))
	for _, o := range overwrites {
		converted = append(converted, &discordgo.PermissionOverwrite{
			ID:    o.Principal.ID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: PermissionBits(o.Allow),
			Deny:  PermissionBits(o.Deny),
		})
	}
	return converted
}

// classify wraps err with setup.ErrUnauthorized when Discord rejected the bot token.
func classify(msg string, err error) error {
	if errors.Is(err, discordgo.ErrUnauthorized) {
		return fmt.Errorf("%s: %w: %w", msg, setup.ErrUnauthorized, err)
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w: %w", msg, setup.ErrUnauthorized, err)
	}

	return fmt.Errorf("%s: %w", msg, err)
}
