package utils

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"triage-bot/model"
)

// SystemCommands are reserved for the application owner. No grant in the
// permission tree can open them to anyone else.
var SystemCommands = []string{"shutdown", "reload_patterns", "host"}

// ManagerKey is the wildcard grant key covering all non-system commands.
const ManagerKey = "*"

// IsSystemCommand reports whether a command is owner-only.
func IsSystemCommand(name string) bool {
	for _, c := range SystemCommands {
		if c == name {
			return true
		}
	}
	return false
}

// Invoker describes the identity asking to run a command.
type Invoker struct {
	UserID     string
	RoleIDs    []string
	IsOwner    bool
	GuildAdmin bool
}

// CheckCommandPermission resolves whether the invoker may run a command in
// a guild. The precedence is fixed:
//
//  1. system command: owner only, nothing below applies
//  2. application owner
//  3. guild administrator / manage-server
//  4. user manager grant (users/*)
//  5. role manager grant (*)
//  6. per-command user grant
//  7. per-command role grant
func CheckCommandPermission(inv Invoker, guildID, commandName string, perms map[string]*model.GuildGrants) bool {
	if IsSystemCommand(commandName) {
		return inv.IsOwner
	}
	if inv.IsOwner {
		return true
	}
	if inv.GuildAdmin {
		return true
	}

	grants, ok := perms[guildID]
	if !ok {
		return false
	}
	if grants.UserGranted(ManagerKey, inv.UserID) {
		return true
	}
	if grants.RoleGranted(ManagerKey, inv.RoleIDs) {
		return true
	}
	if grants.UserGranted(commandName, inv.UserID) {
		return true
	}
	if grants.RoleGranted(commandName, inv.RoleIDs) {
		return true
	}
	return false
}

// ResolveInvoker builds an Invoker from a guild message. Guild-admin status
// comes from the author's role permission bits.
func ResolveInvoker(s *discordgo.Session, m *discordgo.MessageCreate, ownerID string) Invoker {
	inv := Invoker{
		UserID:  m.Author.ID,
		IsOwner: ownerID != "" && m.Author.ID == ownerID,
	}
	if m.Member != nil {
		inv.RoleIDs = m.Member.Roles
	}
	inv.GuildAdmin = memberIsAdmin(s, m.GuildID, inv.UserID, inv.RoleIDs)
	return inv
}

// memberIsAdmin reports whether the member holds guild-administrator
// capability. The guild owner always does, with or without an admin role.
func memberIsAdmin(s *discordgo.Session, guildID, userID string, roleIDs []string) bool {
	const adminBits = discordgo.PermissionAdministrator | discordgo.PermissionManageServer

	guild, err := resolveGuild(s, guildID)
	if err != nil {
		log.Printf("Could not resolve guild %s: %v", guildID, err)
		return false
	}
	if guild.OwnerID == userID {
		return true
	}

	roles := guild.Roles
	if len(roles) == 0 {
		roles, err = s.GuildRoles(guildID)
		if err != nil {
			log.Printf("Could not resolve roles for guild %s: %v", guildID, err)
			return false
		}
	}
	for _, role := range roles {
		for _, id := range roleIDs {
			if role.ID == id && role.Permissions&adminBits != 0 {
				return true
			}
		}
	}
	return false
}

func resolveGuild(s *discordgo.Session, guildID string) (*discordgo.Guild, error) {
	if guild, err := s.State.Guild(guildID); err == nil {
		return guild, nil
	}
	return s.Guild(guildID)
}
