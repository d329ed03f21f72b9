package commands

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"

	"triage-bot/model"
	"triage-bot/utils"
)

func registerPermissionCommands(r *Registry) {
	r.Register(&Command{
		Name:     "add_command_role",
		Category: "Permissions",
		Help:     "Give a role or user permission to use a specific bot command.",
		Usage:    "add_command_role <@role|@user|id> <command>",
		MinArgs:  2,
		Handler: func(ctx *Context) error {
			return handleCommandGrant(ctx, r, true)
		},
	})
	r.Register(&Command{
		Name:     "remove_command_role",
		Category: "Permissions",
		Help:     "Remove a role or user's permission to use a specific bot command.",
		Usage:    "remove_command_role <@role|@user|id> <command>",
		MinArgs:  2,
		Handler: func(ctx *Context) error {
			return handleCommandGrant(ctx, r, false)
		},
	})
	r.Register(&Command{
		Name:     "add_bot_manager",
		Category: "Permissions",
		Help:     "Add a role or user as a bot manager with access to all non-system commands.",
		Usage:    "add_bot_manager <@role|@user|id>",
		MinArgs:  1,
		Handler: func(ctx *Context) error {
			return handleManagerGrant(ctx, true)
		},
	})
	r.Register(&Command{
		Name:     "remove_bot_manager",
		Category: "Permissions",
		Help:     "Remove a role or user from bot managers, revoking access to all commands.",
		Usage:    "remove_bot_manager <@role|@user|id>",
		MinArgs:  1,
		Handler: func(ctx *Context) error {
			return handleManagerGrant(ctx, false)
		},
	})
}

func handleCommandGrant(ctx *Context, r *Registry, add bool) error {
	target, ok := resolveTarget(ctx.Session, ctx.Message.GuildID, ctx.Args[0])
	if !ok {
		ctx.Reply(fmt.Sprintf("Could not find role or user %q", ctx.Args[0]))
		return nil
	}

	commandName := ctx.Args[1]
	if _, exists := r.Get(commandName); !exists {
		ctx.Reply(fmt.Sprintf("Command %s does not exist", commandName))
		return nil
	}

	return mutateGrants(ctx, target, commandName, add,
		fmt.Sprintf("permissions for the %s command", commandName))
}

func handleManagerGrant(ctx *Context, add bool) error {
	target, ok := resolveTarget(ctx.Session, ctx.Message.GuildID, ctx.Args[0])
	if !ok {
		ctx.Reply(fmt.Sprintf("Could not find role or user %q", ctx.Args[0]))
		return nil
	}
	return mutateGrants(ctx, target, utils.ManagerKey, add, "bot managers with access to all commands")
}

// mutateGrants applies one grant or revoke under the given key, keeping the
// tree free of empty containers: revoking the last entry under a key prunes
// the key, and an emptied guild node is dropped from the document.
func mutateGrants(ctx *Context, target grantTarget, key string, add bool, what string) error {
	guildID := ctx.Message.GuildID
	kind := "User"
	if target.isRole {
		kind = "Role"
	}

	var response string
	err := ctx.Bot.Store.Update(func(cfg *model.Config) error {
		grants, ok := cfg.CommandPermissions[guildID]
		if !ok {
			if !add {
				response = fmt.Sprintf("%s %s is not in the %s.", kind, target.display, what)
				return utils.ErrNoChange
			}
			grants = model.NewGuildGrants()
			cfg.CommandPermissions[guildID] = grants
		}

		var changed bool
		switch {
		case add && target.isRole:
			changed = grants.AddRole(key, target.id)
		case add:
			changed = grants.AddUser(key, target.id)
		case target.isRole:
			changed = grants.RemoveRole(key, target.id)
		default:
			changed = grants.RemoveUser(key, target.id)
		}

		if !changed {
			if add {
				response = fmt.Sprintf("%s %s is already in the %s.", kind, target.display, what)
			} else {
				response = fmt.Sprintf("%s %s is not in the %s.", kind, target.display, what)
			}
			return utils.ErrNoChange
		}

		if grants.Empty() {
			delete(cfg.CommandPermissions, guildID)
		}

		if add {
			response = fmt.Sprintf("%s %s added to %s.", kind, target.display, what)
		} else {
			response = fmt.Sprintf("%s %s removed from %s.", kind, target.display, what)
		}
		return nil
	})
	if err != nil && !errors.Is(err, utils.ErrNoChange) {
		return err
	}

	ctx.Reply(response)
	return nil
}

type grantTarget struct {
	id      string
	isRole  bool
	display string
}

var (
	roleMention = regexp.MustCompile(`^<@&(\d+)>$`)
	userMention = regexp.MustCompile(`^<@!?(\d+)>$`)
	bareID      = regexp.MustCompile(`^\d+$`)
)

// resolveTarget interprets a mention or bare id as a guild role or a user.
// Bare ids are tried as roles first, then as users.
func resolveTarget(s *discordgo.Session, guildID, raw string) (grantTarget, bool) {
	raw = strings.TrimSpace(raw)

	if m := roleMention.FindStringSubmatch(raw); m != nil {
		if role := findGuildRole(s, guildID, m[1]); role != nil {
			return grantTarget{id: role.ID, isRole: true, display: role.Name}, true
		}
		return grantTarget{}, false
	}
	if m := userMention.FindStringSubmatch(raw); m != nil {
		if user, err := s.User(m[1]); err == nil {
			return grantTarget{id: user.ID, display: user.Username}, true
		}
		return grantTarget{}, false
	}
	if bareID.MatchString(raw) {
		if role := findGuildRole(s, guildID, raw); role != nil {
			return grantTarget{id: role.ID, isRole: true, display: role.Name}, true
		}
		if user, err := s.User(raw); err == nil {
			return grantTarget{id: user.ID, display: user.Username}, true
		}
	}
	return grantTarget{}, false
}

func findGuildRole(s *discordgo.Session, guildID, roleID string) *discordgo.Role {
	var roles []*discordgo.Role
	if guild, err := s.State.Guild(guildID); err == nil {
		roles = guild.Roles
	}
	if len(roles) == 0 {
		fetched, err := s.GuildRoles(guildID)
		if err != nil {
			return nil
		}
		roles = fetched
	}
	for _, role := range roles {
		if role.ID == roleID {
			return role
		}
	}
	return nil
}
