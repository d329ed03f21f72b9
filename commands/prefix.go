package commands

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"triage-bot/model"
	"triage-bot/utils"
)

// maxPrefixLen caps the prefix at 5 characters, counted in runes.
const maxPrefixLen = 5

func prefixTooLong(prefix string) bool {
	return utf8.RuneCountInString(prefix) > maxPrefixLen
}

func registerPrefixCommands(r *Registry) {
	r.Register(&Command{
		Name:     "set_prefix",
		Category: "Bot Configuration",
		Help:     "Change the command prefix for this server.",
		Usage:    "set_prefix <prefix>",
		MinArgs:  1,
		Handler:  handleSetPrefix,
	})
	r.Register(&Command{
		Name:     "reset_prefix",
		Category: "Bot Configuration",
		Help:     "Reset the command prefix for this server to the default.",
		Usage:    "reset_prefix",
		Handler:  handleResetPrefix,
	})
}

func handleSetPrefix(ctx *Context) error {
	prefix := ctx.Args[0]
	if prefixTooLong(prefix) {
		ctx.Reply("Prefix must be 5 characters or less.")
		return nil
	}

	guildID := ctx.Message.GuildID
	var oldPrefix string
	err := ctx.Bot.Store.Update(func(cfg *model.Config) error {
		oldPrefix = cfg.PrefixFor(guildID)
		cfg.ServerPrefixes[guildID] = prefix
		return nil
	})
	if err != nil {
		return err
	}

	ctx.Reply(fmt.Sprintf("Command prefix for this server has been changed from `%s` to `%s`", oldPrefix, prefix))
	return nil
}

func handleResetPrefix(ctx *Context) error {
	guildID := ctx.Message.GuildID
	var oldPrefix, defaultPrefix string
	err := ctx.Bot.Store.Update(func(cfg *model.Config) error {
		defaultPrefix = cfg.CommandPrefix
		old, ok := cfg.ServerPrefixes[guildID]
		if !ok {
			return utils.ErrNoChange
		}
		oldPrefix = old
		delete(cfg.ServerPrefixes, guildID)
		return nil
	})
	if errors.Is(err, utils.ErrNoChange) {
		ctx.Reply(fmt.Sprintf("This server already uses the default prefix `%s`", defaultPrefix))
		return nil
	}
	if err != nil {
		return err
	}

	ctx.Reply(fmt.Sprintf("Command prefix for this server has been reset from `%s` to the default `%s`", oldPrefix, defaultPrefix))
	return nil
}
