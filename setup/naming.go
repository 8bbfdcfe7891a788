package setup

import (
	"fmt"
	"strings"
)

// Kind is the kind of resource an Action or ResourceKey refers to.
type Kind string

const (
	KindRole     Kind = "role"
	KindCategory Kind = "category"
	KindChannel  Kind = "channel"
)

// Kinds lists every Kind in reconciliation order.
var Kinds = []Kind{KindRole, KindCategory, KindChannel}

// ResourceKey identifies a declared resource against live state.
type ResourceKey struct {
	Kind   Kind
	Parent string
	Name   string
}

func (k ResourceKey) String() string {
	if k.Parent == "" {
		return fmt.Sprintf("%s:%s", k.Kind, k.Name)
	}
	return fmt.Sprintf("%s:%s/%s", k.Kind, k.Parent, k.Name)
}

// RoleKey returns the lookup key of a role.
func RoleKey(name string) ResourceKey {
	return ResourceKey{Kind: KindRole, Name: name}
}

// CategoryKey returns the lookup key of a category.
func CategoryKey(name string) ResourceKey {
	return ResourceKey{Kind: KindCategory, Name: name}
}

// ChannelKey returns the lookup key of a channel under the given category.
func ChannelKey(parent string, channel ChannelSpec) ResourceKey {
	return ResourceKey{Kind: KindChannel, Parent: parent, Name: ChannelLookupName(channel)}
}

// ChannelLookupName returns the name a channel is stored under on the remote platform.
// Text channel names are lower-cased and whitespace runs become a single "-".
// Voice channel names are kept verbatim.
func ChannelLookupName(channel ChannelSpec) string {
	if channel.Type == ChannelTypeVoice {
		return channel.Name
	}
	return strings.ToLower(strings.Join(strings.Fields(channel.Name), "-"))
}
