package utils

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage-bot/model"
)

func grantsWith(mutate func(*model.GuildGrants)) map[string]*model.GuildGrants {
	g := model.NewGuildGrants()
	mutate(g)
	return map[string]*model.GuildGrants{"guild-1": g}
}

func TestCheckCommandPermission(t *testing.T) {
	owner := Invoker{UserID: "owner", IsOwner: true}
	admin := Invoker{UserID: "admin", GuildAdmin: true}
	nobody := Invoker{UserID: "nobody"}

	tests := []struct {
		name    string
		inv     Invoker
		command string
		perms   map[string]*model.GuildGrants
		want    bool
	}{
		{
			name:    "owner runs system commands",
			inv:     owner,
			command: "shutdown",
			want:    true,
		},
		{
			name:    "guild admin denied system commands",
			inv:     admin,
			command: "reload_patterns",
			want:    false,
		},
		{
			name: "system commands ignore grants entirely",
			inv:  Invoker{UserID: "u1", RoleIDs: []string{"r1"}},
			perms: grantsWith(func(g *model.GuildGrants) {
				g.AddRole("host", "r1")
				g.AddUser(ManagerKey, "u1")
			}),
			command: "host",
			want:    false,
		},
		{
			name:    "guild admin allowed on everything else",
			inv:     admin,
			command: "set_prefix",
			want:    true,
		},
		{
			name:    "no grants means denied",
			inv:     nobody,
			command: "set_prefix",
			want:    false,
		},
		{
			name: "user manager grant",
			inv:  Invoker{UserID: "u1"},
			perms: grantsWith(func(g *model.GuildGrants) {
				g.AddUser(ManagerKey, "u1")
			}),
			command: "toggle_ocr_echo",
			want:    true,
		},
		{
			name: "role manager grant",
			inv:  Invoker{UserID: "u1", RoleIDs: []string{"mods"}},
			perms: grantsWith(func(g *model.GuildGrants) {
				g.AddRole(ManagerKey, "mods")
			}),
			command: "add_ocr_read_channel",
			want:    true,
		},
		{
			name: "per-command user grant",
			inv:  Invoker{UserID: "u1"},
			perms: grantsWith(func(g *model.GuildGrants) {
				g.AddUser("add_ocr_read_channel", "u1")
			}),
			command: "add_ocr_read_channel",
			want:    true,
		},
		{
			name: "per-command grant does not cross commands",
			inv:  Invoker{UserID: "u1"},
			perms: grantsWith(func(g *model.GuildGrants) {
				g.AddUser("add_ocr_read_channel", "u1")
			}),
			command: "remove_ocr_read_channel",
			want:    false,
		},
		{
			name: "per-command role grant",
			inv:  Invoker{UserID: "u1", RoleIDs: []string{"helpers", "other"}},
			perms: grantsWith(func(g *model.GuildGrants) {
				g.AddRole("set_prefix", "helpers")
			}),
			command: "set_prefix",
			want:    true,
		},
		{
			name: "grants in another guild do not apply",
			inv:  Invoker{UserID: "u1"},
			perms: map[string]*model.GuildGrants{
				"guild-2": func() *model.GuildGrants {
					g := model.NewGuildGrants()
					g.AddUser(ManagerKey, "u1")
					return g
				}(),
			},
			command: "set_prefix",
			want:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckCommandPermission(tt.inv, "guild-1", tt.command, tt.perms)
			assert.Equal(t, tt.want, got)
		})
	}
}

func stateSession(t *testing.T, guild *discordgo.Guild) *discordgo.Session {
	t.Helper()
	s := &discordgo.Session{State: discordgo.NewState()}
	require.NoError(t, s.State.GuildAdd(guild))
	return s
}

func messageFrom(guildID, userID string, roleIDs []string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		GuildID: guildID,
		Author:  &discordgo.User{ID: userID},
		Member:  &discordgo.Member{Roles: roleIDs},
	}}
}

func TestResolveInvokerGuildOwnerIsAdmin(t *testing.T) {
	// The guild owner holds every permission implicitly, even when none of
	// their roles carry an admin bit.
	s := stateSession(t, &discordgo.Guild{
		ID:      "g1",
		OwnerID: "owner-user",
		Roles:   []*discordgo.Role{{ID: "r0", Permissions: 0}},
	})

	inv := ResolveInvoker(s, messageFrom("g1", "owner-user", []string{"r0"}), "")
	assert.True(t, inv.GuildAdmin)
	assert.True(t, CheckCommandPermission(inv, "g1", "set_prefix", nil))
}

func TestResolveInvokerAdminRoleBits(t *testing.T) {
	s := stateSession(t, &discordgo.Guild{
		ID:      "g1",
		OwnerID: "owner-user",
		Roles: []*discordgo.Role{
			{ID: "r0", Permissions: 0},
			{ID: "r-admin", Permissions: discordgo.PermissionAdministrator},
		},
	})

	inv := ResolveInvoker(s, messageFrom("g1", "u1", []string{"r-admin"}), "")
	assert.True(t, inv.GuildAdmin)
}

func TestResolveInvokerPlainMemberIsNotAdmin(t *testing.T) {
	s := stateSession(t, &discordgo.Guild{
		ID:      "g1",
		OwnerID: "owner-user",
		Roles:   []*discordgo.Role{{ID: "r0", Permissions: 0}},
	})

	inv := ResolveInvoker(s, messageFrom("g1", "u1", []string{"r0"}), "")
	assert.False(t, inv.GuildAdmin)
	assert.False(t, CheckCommandPermission(inv, "g1", "set_prefix", nil))
}

func TestIsSystemCommand(t *testing.T) {
	assert.True(t, IsSystemCommand("shutdown"))
	assert.True(t, IsSystemCommand("reload_patterns"))
	assert.True(t, IsSystemCommand("host"))
	assert.False(t, IsSystemCommand("set_prefix"))
}
