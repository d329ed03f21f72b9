package model

import "encoding/json"

// GuildGrants holds the per-guild permission tree. Role grants are keyed by
// command name (or "*" for the manager grant); user grants live under a
// nested "users" object with the same keys. The wire shape is
//
//	{"*": [roleID...], "cmd": [roleID...], "users": {"*": [userID...], "cmd": [userID...]}}
//
// which is why this type carries custom JSON marshalling: command keys and
// the "users" object share one level of the same document.
type GuildGrants struct {
	Roles map[string][]string
	Users map[string][]string
}

const usersKey = "users"

// NewGuildGrants returns an empty grants tree.
func NewGuildGrants() *GuildGrants {
	return &GuildGrants{
		Roles: make(map[string][]string),
		Users: make(map[string][]string),
	}
}

func (g *GuildGrants) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(g.Roles)+1)
	for cmd, roles := range g.Roles {
		out[cmd] = roles
	}
	if len(g.Users) > 0 {
		out[usersKey] = g.Users
	}
	return json.Marshal(out)
}

func (g *GuildGrants) UnmarshalJSON(data []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.Roles = make(map[string][]string)
	g.Users = make(map[string][]string)
	for key, val := range raw {
		if key == usersKey {
			if err := json.Unmarshal(val, &g.Users); err != nil {
				return err
			}
			continue
		}
		var roles []string
		if err := json.Unmarshal(val, &roles); err != nil {
			return err
		}
		g.Roles[key] = roles
	}
	return nil
}

// Empty reports whether the tree holds no grants at all. An empty tree is
// pruned from the config by the caller.
func (g *GuildGrants) Empty() bool {
	return len(g.Roles) == 0 && len(g.Users) == 0
}

// RoleGranted reports whether any of the given role ids holds a grant for
// the key ("*" or a command name).
func (g *GuildGrants) RoleGranted(key string, roleIDs []string) bool {
	granted, ok := g.Roles[key]
	if !ok {
		return false
	}
	for _, id := range roleIDs {
		if containsString(granted, id) {
			return true
		}
	}
	return false
}

// UserGranted reports whether the user id holds a grant for the key.
func (g *GuildGrants) UserGranted(key, userID string) bool {
	return containsString(g.Users[key], userID)
}

// AddRole grants a role access under the key. Returns false if the grant
// already existed.
func (g *GuildGrants) AddRole(key, roleID string) bool {
	if containsString(g.Roles[key], roleID) {
		return false
	}
	g.Roles[key] = append(g.Roles[key], roleID)
	return true
}

// RemoveRole revokes a role grant under the key, pruning the key when its
// list empties. Returns false if no such grant existed.
func (g *GuildGrants) RemoveRole(key, roleID string) bool {
	list, removed := removeString(g.Roles[key], roleID)
	if !removed {
		return false
	}
	if len(list) == 0 {
		delete(g.Roles, key)
	} else {
		g.Roles[key] = list
	}
	return true
}

// AddUser grants a user access under the key. Returns false if the grant
// already existed.
func (g *GuildGrants) AddUser(key, userID string) bool {
	if containsString(g.Users[key], userID) {
		return false
	}
	g.Users[key] = append(g.Users[key], userID)
	return true
}

// RemoveUser revokes a user grant under the key, pruning the key when its
// list empties. Returns false if no such grant existed.
func (g *GuildGrants) RemoveUser(key, userID string) bool {
	list, removed := removeString(g.Users[key], userID)
	if !removed {
		return false
	}
	if len(list) == 0 {
		delete(g.Users, key)
	} else {
		g.Users[key] = list
	}
	return true
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func removeString(slice []string, item string) ([]string, bool) {
	for i, s := range slice {
		if s == item {
			return append(slice[:i], slice[i+1:]...), true
		}
	}
	return slice, false
}
