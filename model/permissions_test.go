package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildGrantsWireShape(t *testing.T) {
	g := NewGuildGrants()
	g.AddRole("*", "111")
	g.AddRole("set_prefix", "222")
	g.AddUser("*", "333")
	g.AddUser("add_ocr_read_channel", "444")

	data, err := json.Marshal(g)
	require.NoError(t, err)

	// Command keys and the users object live at the same level.
	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Contains(t, wire, "*")
	assert.Contains(t, wire, "set_prefix")
	assert.Contains(t, wire, "users")

	var back GuildGrants
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, g.Roles, back.Roles)
	assert.Equal(t, g.Users, back.Users)
}

func TestGuildGrantsMarshalOmitsEmptyUsers(t *testing.T) {
	g := NewGuildGrants()
	g.AddRole("set_prefix", "222")

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.NotContains(t, wire, "users")
}

func TestGuildGrantsUnmarshalLegacyTree(t *testing.T) {
	raw := `{"*": ["1", "2"], "toggle_ocr_echo": ["3"], "users": {"*": ["9"]}}`

	var g GuildGrants
	require.NoError(t, json.Unmarshal([]byte(raw), &g))

	assert.True(t, g.RoleGranted("*", []string{"2"}))
	assert.True(t, g.RoleGranted("toggle_ocr_echo", []string{"3"}))
	assert.True(t, g.UserGranted("*", "9"))
	assert.False(t, g.UserGranted("toggle_ocr_echo", "9"))
}

func TestGuildGrantsAddIsIdempotent(t *testing.T) {
	g := NewGuildGrants()

	assert.True(t, g.AddRole("set_prefix", "r1"))
	assert.False(t, g.AddRole("set_prefix", "r1"))
	assert.Len(t, g.Roles["set_prefix"], 1)

	assert.True(t, g.AddUser("set_prefix", "u1"))
	assert.False(t, g.AddUser("set_prefix", "u1"))
	assert.Len(t, g.Users["set_prefix"], 1)
}

func TestGuildGrantsRemovePrunesEmptiedKeys(t *testing.T) {
	g := NewGuildGrants()
	g.AddRole("add_ocr_read_channel", "r1")
	g.AddRole("add_ocr_read_channel", "r2")

	assert.True(t, g.RemoveRole("add_ocr_read_channel", "r1"))
	assert.Contains(t, g.Roles, "add_ocr_read_channel")

	// Revoking the last grant removes the command key itself.
	assert.True(t, g.RemoveRole("add_ocr_read_channel", "r2"))
	assert.NotContains(t, g.Roles, "add_ocr_read_channel")

	assert.False(t, g.RemoveRole("add_ocr_read_channel", "r2"))
}

func TestGuildGrantsRemoveLastManagerPrunesWildcard(t *testing.T) {
	g := NewGuildGrants()
	g.AddRole("*", "mods")
	g.AddUser("*", "u1")

	assert.True(t, g.RemoveRole("*", "mods"))
	assert.NotContains(t, g.Roles, "*")
	assert.False(t, g.Empty())

	assert.True(t, g.RemoveUser("*", "u1"))
	assert.NotContains(t, g.Users, "*")
	assert.True(t, g.Empty())
}
