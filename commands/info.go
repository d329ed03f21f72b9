package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"triage-bot/model"
	"triage-bot/utils/database"
)

func registerInfoCommands(r *Registry) {
	r.Register(&Command{
		Name:     "server_info",
		Category: "Bot Configuration",
		Help:     "Show this server's OCR and permission configuration.",
		Usage:    "server_info",
		Handler:  handleServerInfo,
	})
	r.Register(&Command{
		Name:     "help",
		Category: "Bot Configuration",
		Help:     "List available commands, or show help for one command.",
		Usage:    "help [command]",
		Handler: func(ctx *Context) error {
			return handleHelp(ctx, r)
		},
	})
	r.Register(&Command{
		Name:     "toggle_ocr_echo",
		Category: "OCR Configuration",
		Help:     "Toggle whether unmatched OCR text is echoed into the response channel.",
		Usage:    "toggle_ocr_echo",
		Handler:  handleToggleEcho,
	})
}

func handleServerInfo(ctx *Context) error {
	guildID := ctx.Message.GuildID

	var prefix string
	var read, response, fallback []int64
	var grants *model.GuildGrants
	var echo bool
	ctx.Bot.Store.View(func(cfg *model.Config) {
		prefix = cfg.PrefixFor(guildID)
		read = cfg.OCRReadChannels[guildID]
		response = cfg.OCRResponseChannels[guildID]
		fallback = cfg.OCRResponseFallback[guildID]
		grants = cfg.CommandPermissions[guildID]
		echo = cfg.EchoUnmatched(guildID)
	})

	embed := &discordgo.MessageEmbed{
		Title: "Server Configuration",
		Color: 3447003,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Prefix", Value: fmt.Sprintf("`%s`", prefix), Inline: true},
			{Name: "Echo unmatched OCR", Value: fmt.Sprintf("%t", echo), Inline: true},
			{Name: "Read channels", Value: channelList(read), Inline: false},
			{Name: "Response channels", Value: channelList(response), Inline: false},
			{Name: "Fallback channels", Value: channelList(fallback), Inline: false},
			{Name: "Permission grants", Value: grantSummary(grants), Inline: false},
		},
	}

	if ctx.Bot.StatsDB != nil {
		total, err := database.GuildMatchCount(ctx.Bot.StatsDB, guildID)
		if err == nil {
			top, _ := database.TopRules(ctx.Bot.StatsDB, guildID, 5)
			var lines []string
			for _, rc := range top {
				lines = append(lines, fmt.Sprintf("%s: %d", rc.RuleName, rc.Count))
			}
			value := fmt.Sprintf("%d total", total)
			if len(lines) > 0 {
				value += "\n" + strings.Join(lines, "\n")
			}
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: "Signature matches", Value: value,
			})
		}
	}

	ctx.ReplyEmbed(embed)
	return nil
}

func channelList(set []int64) string {
	if len(set) == 0 {
		return "none"
	}
	var parts []string
	for _, id := range set {
		parts = append(parts, fmt.Sprintf("<#%d>", id))
	}
	return strings.Join(parts, " ")
}

func grantSummary(grants *model.GuildGrants) string {
	if grants == nil || grants.Empty() {
		return "none"
	}
	var lines []string
	for key, roles := range grants.Roles {
		lines = append(lines, fmt.Sprintf("%s: %d role(s)", key, len(roles)))
	}
	for key, users := range grants.Users {
		lines = append(lines, fmt.Sprintf("%s: %d user(s)", key, len(users)))
	}
	return strings.Join(lines, "\n")
}

func handleHelp(ctx *Context, r *Registry) error {
	var prefix string
	ctx.Bot.Store.View(func(cfg *model.Config) {
		prefix = cfg.PrefixFor(ctx.Message.GuildID)
	})

	if len(ctx.Args) > 0 {
		cmd, ok := r.Get(ctx.Args[0])
		if !ok {
			ctx.Reply(fmt.Sprintf("Command %s does not exist", ctx.Args[0]))
			return nil
		}
		ctx.Reply(fmt.Sprintf("`%s%s`: %s", prefix, cmd.Usage, cmd.Help))
		return nil
	}

	byCategory := make(map[string][]string)
	var categories []string
	for _, cmd := range r.All() {
		if _, seen := byCategory[cmd.Category]; !seen {
			categories = append(categories, cmd.Category)
		}
		byCategory[cmd.Category] = append(byCategory[cmd.Category], cmd.Name)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Commands (prefix `%s`):\n", prefix))
	for _, cat := range categories {
		b.WriteString(fmt.Sprintf("**%s**: %s\n", cat, strings.Join(byCategory[cat], ", ")))
	}
	ctx.Reply(b.String())
	return nil
}

func handleToggleEcho(ctx *Context) error {
	guildID := ctx.Message.GuildID
	var enabled bool
	err := ctx.Bot.Store.Update(func(cfg *model.Config) error {
		enabled = !cfg.EchoUnmatched(guildID)
		cfg.OCREchoUnmatched[guildID] = enabled
		return nil
	})
	if err != nil {
		return err
	}

	if enabled {
		ctx.Reply("Unmatched OCR text will now be echoed into the response channel.")
	} else {
		ctx.Reply("Unmatched OCR text will no longer be echoed.")
	}
	return nil
}
