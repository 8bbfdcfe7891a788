package setup

import (
	"context"
	"fmt"
)

// fakeGateway is an in-memory guild implementing Gateway for tests.
// Each *Func field, when set, replaces the default behavior of the corresponding method.
type fakeGateway struct {
	roles      map[string]Identity
	categories map[string]Identity
	channels   map[string]Identity // keyed by parent ID + "/" + name
	nextID     int

	calls []string

	createdCategories []categoryCall
	createdChannels   []ChannelRequest

	findRoleByNameFunc     func(name string) (Identity, bool, error)
	createRoleFunc         func(role RoleSpec) (Identity, error)
	findCategoryByNameFunc func(name string) (Identity, bool, error)
	createCategoryFunc     func(name string, overwrites []PermissionOverwrite) (Identity, error)
	findChannelByNameFunc  func(name string, parent Identity) (Identity, bool, error)
	createChannelFunc      func(req ChannelRequest) (Identity, error)
}

type categoryCall struct {
	name       string
	overwrites []PermissionOverwrite
}

var _ Gateway = (*fakeGateway)(nil)

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		roles:      map[string]Identity{},
		categories: map[string]Identity{},
		channels:   map[string]Identity{},
	}
}

func (g *fakeGateway) id(prefix string) string {
	g.nextID++
	return fmt.Sprintf("%s-%d", prefix, g.nextID)
}

func (g *fakeGateway) addRole(name string) Identity {
	identity := Identity{ID: g.id("role"), Name: name}
	g.roles[name] = identity
	return identity
}

func (g *fakeGateway) addCategory(name string) Identity {
	identity := Identity{ID: g.id("category"), Name: name}
	g.categories[name] = identity
	return identity
}

func (g *fakeGateway) mutatingCalls() int {
	count := 0
	for _, c := range g.calls {
		switch c {
		case "CreateRole", "CreateCategory", "CreateChannel":
			count++
		}
	}
	return count
}

func (g *fakeGateway) FindRoleByName(_ context.Context, name string) (Identity, bool, error) {
	g.calls = append(g.calls, "FindRoleByName")
	if g.findRoleByNameFunc != nil {
		return g.findRoleByNameFunc(name)
	}
	identity, ok := g.roles[name]
	return identity, ok, nil
}

func (g *fakeGateway) CreateRole(_ context.Context, role RoleSpec) (Identity, error) {
	g.calls = append(g.calls, "CreateRole")
	if g.createRoleFunc != nil {
		return g.createRoleFunc(role)
	}
	return g.addRole(role.Name), nil
}

func (g *fakeGateway) FindCategoryByName(_ context.Context, name string) (Identity, bool, error) {
	g.calls = append(g.calls, "FindCategoryByName")
	if g.findCategoryByNameFunc != nil {
		return g.findCategoryByNameFunc(name)
	}
	identity, ok := g.categories[name]
	return identity, ok, nil
}

func (g *fakeGateway) CreateCategory(_ context.Context, name string, overwrites []PermissionOverwrite) (Identity, error) {
	g.calls = append(g.calls, "CreateCategory")
	g.createdCategories = append(g.createdCategories, categoryCall{name: name, overwrites: overwrites})
	if g.createCategoryFunc != nil {
		return g.createCategoryFunc(name, overwrites)
	}
	return g.addCategory(name), nil
}

func (g *fakeGateway) FindChannelByName(_ context.Context, name string, parent Identity) (Identity, bool, error) {
	g.calls = append(g.calls, "FindChannelByName")
	if g.findChannelByNameFunc != nil {
		return g.findChannelByNameFunc(name, parent)
	}
	identity, ok := g.channels[parent.ID+"/"+name]
	return identity, ok, nil
}

func (g *fakeGateway) CreateChannel(_ context.Context, req ChannelRequest) (Identity, error) {
	g.calls = append(g.calls, "CreateChannel")
	g.createdChannels = append(g.createdChannels, req)
	if g.createChannelFunc != nil {
		return g.createChannelFunc(req)
	}
	identity := Identity{ID: g.id("channel"), Name: ChannelLookupName(ChannelSpec{Name: req.Name, Type: req.Type})}
	g.channels[req.Parent.ID+"/"+identity.Name] = identity
	return identity, nil
}

func (g *fakeGateway) EveryonePrincipal() Identity {
	return Identity{ID: "guild-1", Name: "@everyone"}
}
