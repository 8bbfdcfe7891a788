package setup

import (
	"fmt"
	"strconv"
	"strings"
)

// Document is the root of a configuration file.
type Document struct {
	ServerSetup *Configuration `json:"serverSetup" yaml:"serverSetup"`
}

// Configuration declares the desired roles and categories of a guild.
// Declaration order is creation order.
type Configuration struct {
	Roles      []RoleSpec     `json:"roles,omitempty" yaml:"roles,omitempty"`
	Categories []CategorySpec `json:"categories" yaml:"categories"`
}

// RoleSpec declares a role.
type RoleSpec struct {
	// Name identifies the role. The remote platform allows duplicate role names, but
	// reconciliation treats the name as the role's identity.
	Name string `json:"name" yaml:"name"`

	// Color is an optional "#RRGGBB" value.
	Color string `json:"color,omitempty" yaml:"color,omitempty"`

	// Hoist displays the role's members separately from online members.
	Hoist bool `json:"hoist,omitempty" yaml:"hoist,omitempty"`

	Mentionable bool `json:"mentionable,omitempty" yaml:"mentionable,omitempty"`

	Permissions []Permission `json:"permissions,omitempty" yaml:"permissions,omitempty"`
}

// ColorValue returns the integer value of Color.
// The second return value is false when no color is declared.
func (r RoleSpec) ColorValue() (int, bool, error) {
	if r.Color == "" {
		return 0, false, nil
	}

	hex := strings.TrimPrefix(r.Color, "#")
	if len(hex) != 6 {
		return 0, false, fmt.Errorf("color %q must be in #RRGGBB form", r.Color)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, false, fmt.Errorf("color %q must be in #RRGGBB form", r.Color)
	}

	return int(v), true, nil
}

// CategorySpec declares a category and the channels it contains.
type CategorySpec struct {
	Name string `json:"name" yaml:"name"`

	// Locked denies access to everyone but AllowedRoles.
	Locked bool `json:"locked,omitempty" yaml:"locked,omitempty"`

	// AllowedRoles is only meaningful when Locked is true.
	AllowedRoles []string `json:"allowedRoles,omitempty" yaml:"allowedRoles,omitempty"`

	Channels []ChannelSpec `json:"channels" yaml:"channels"`
}

// ChannelType is the kind of communication surface a channel provides.
type ChannelType string

const (
	// ChannelTypeText is a text channel.
	ChannelTypeText ChannelType = "text"

	// ChannelTypeVoice is a voice channel.
	ChannelTypeVoice ChannelType = "voice"
)

// ChannelSpec declares a channel within a category.
type ChannelSpec struct {
	Name string      `json:"name" yaml:"name"`
	Type ChannelType `json:"type" yaml:"type"`

	// Description becomes the channel topic.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Hidden denies visibility to everyone.
	// When nil, the channel is hidden if and only if its category is locked.
	Hidden *bool `json:"hidden,omitempty" yaml:"hidden,omitempty"`

	// AllowedRoles overrides the category's allow-list for this channel.
	// A nil slice means the channel inherits from a locked category.
	AllowedRoles []string `json:"allowedRoles,omitempty" yaml:"allowedRoles,omitempty"`
}

// Permission is a permission token accepted in configuration files.
type Permission string

const (
	PermissionAdministrator      Permission = "ADMINISTRATOR"
	PermissionManageChannels     Permission = "MANAGE_CHANNELS"
	PermissionManageRoles        Permission = "MANAGE_ROLES"
	PermissionManageMessages     Permission = "MANAGE_MESSAGES"
	PermissionKickMembers        Permission = "KICK_MEMBERS"
	PermissionBanMembers         Permission = "BAN_MEMBERS"
	PermissionViewChannel        Permission = "VIEW_CHANNEL"
	PermissionSendMessages       Permission = "SEND_MESSAGES"
	PermissionConnect            Permission = "CONNECT"
	PermissionReadMessageHistory Permission = "READ_MESSAGE_HISTORY"
)

// Permissions lists every supported Permission.
var Permissions = []Permission{
	PermissionAdministrator,
	PermissionManageChannels,
	PermissionManageRoles,
	PermissionManageMessages,
	PermissionKickMembers,
	PermissionBanMembers,
	PermissionViewChannel,
	PermissionSendMessages,
	PermissionConnect,
	PermissionReadMessageHistory,
}

// Valid reports whether p is a supported permission token.
func (p Permission) Valid() bool {
	for _, known := range Permissions {
		if p == known {
			return true
		}
	}
	return false
}

// Validate checks the Configuration and returns a *ValidationError listing every problem.
func (c *Configuration) Validate() error {
	if c == nil {
		return &ValidationError{Problems: []string{"missing serverSetup section"}}
	}

	var problems []string

	roleNames := map[string]bool{}
	for i, role := range c.Roles {
		if strings.TrimSpace(role.Name) == "" {
			problems = append(problems, fmt.Sprintf("role %d missing name", i))
			continue
		}
		if roleNames[role.Name] {
			problems = append(problems, fmt.Sprintf("role %q is declared more than once", role.Name))
		}
		roleNames[role.Name] = true

		if _, _, err := role.ColorValue(); err != nil {
			problems = append(problems, fmt.Sprintf("role %q: %s", role.Name, err.Error()))
		}
		for _, p := range role.Permissions {
			if !p.Valid() {
				problems = append(problems, fmt.Sprintf("role %q has unknown permission %q", role.Name, p))
			}
		}
	}

	categoryNames := map[string]bool{}
	for i, category := range c.Categories {
		label := category.Name
		if strings.TrimSpace(category.Name) == "" {
			problems = append(problems, fmt.Sprintf("category %d missing name", i))
			label = fmt.Sprintf("#%d", i)
		} else if categoryNames[category.Name] {
			problems = append(problems, fmt.Sprintf("category %q is declared more than once", category.Name))
		}
		categoryNames[category.Name] = true

		problems = append(problems, validateRoleRefs(fmt.Sprintf("category %q", label), category.AllowedRoles)...)

		channelNames := map[string]bool{}
		for j, channel := range category.Channels {
			if strings.TrimSpace(channel.Name) == "" {
				problems = append(problems, fmt.Sprintf("channel %d in category %q missing name", j, label))
				continue
			}
			if channel.Type != ChannelTypeText && channel.Type != ChannelTypeVoice {
				problems = append(problems, fmt.Sprintf("channel %q must have type %q or %q", channel.Name, ChannelTypeText, ChannelTypeVoice))
				continue
			}

			lookup := ChannelLookupName(channel)
			if channelNames[lookup] {
				problems = append(problems, fmt.Sprintf("channel %q is declared more than once in category %q", channel.Name, label))
			}
			channelNames[lookup] = true

			problems = append(problems, validateRoleRefs(fmt.Sprintf("channel %q", channel.Name), channel.AllowedRoles)...)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func validateRoleRefs(owner string, names []string) []string {
	var problems []string
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			problems = append(problems, fmt.Sprintf("%s has an empty allowed role name", owner))
		}
	}
	return problems
}
