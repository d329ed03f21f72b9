package commands

import (
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"triage-bot/bot"
	"triage-bot/model"
	"triage-bot/utils"
)

// Context carries everything a command handler needs for one invocation.
type Context struct {
	Session *discordgo.Session
	Bot     *bot.Bot
	Message *discordgo.MessageCreate
	Args    []string
}

// Reply sends text as a reply to the invoking message.
func (c *Context) Reply(text string) {
	sent, err := c.Session.ChannelMessageSendReply(c.Message.ChannelID, text, c.Message.Reference())
	if err != nil {
		log.Printf("Error replying in channel %s: %v", c.Message.ChannelID, err)
		return
	}
	log.Printf("Response: %s", sent.Content)
}

// ReplyEmbed sends an embed as a reply to the invoking message.
func (c *Context) ReplyEmbed(embed *discordgo.MessageEmbed) {
	_, err := c.Session.ChannelMessageSendEmbedReply(c.Message.ChannelID, embed, c.Message.Reference())
	if err != nil {
		log.Printf("Error replying in channel %s: %v", c.Message.ChannelID, err)
	}
}

// Command is one registry entry, resolved once at startup and never mutated
// at runtime.
type Command struct {
	Name     string
	Category string
	Help     string
	Usage    string
	MinArgs  int
	Handler  func(ctx *Context) error
}

// Registry maps command names to their entries, preserving registration
// order for help output.
type Registry struct {
	commands map[string]*Command
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

func (r *Registry) Register(cmd *Command) {
	if _, exists := r.commands[cmd.Name]; exists {
		log.Fatalf("Duplicate command registration: %s", cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	r.order = append(r.order, cmd.Name)
}

func (r *Registry) Get(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// All returns the commands in registration order.
func (r *Registry) All() []*Command {
	out := make([]*Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

// Dispatch parses a guild message as a potential command invocation, runs
// the authorization chain, and invokes the handler. Permission denials and
// unknown commands are silent toward the user; handler errors are echoed
// back to the invoking channel.
func (r *Registry) Dispatch(s *discordgo.Session, m *discordgo.MessageCreate, b *bot.Bot) {
	if m.GuildID == "" {
		return
	}

	var prefix string
	b.Store.View(func(cfg *model.Config) {
		prefix = cfg.PrefixFor(m.GuildID)
	})
	if prefix == "" || !strings.HasPrefix(m.Content, prefix) {
		return
	}

	fields := strings.Fields(m.Content[len(prefix):])
	if len(fields) == 0 {
		return
	}
	name := fields[0]

	cmd, ok := r.Get(name)
	if !ok {
		log.Printf("Unknown command: %s", m.Content)
		return
	}

	inv := utils.ResolveInvoker(s, m, b.OwnerID)
	allowed := false
	b.Store.View(func(cfg *model.Config) {
		allowed = utils.CheckCommandPermission(inv, m.GuildID, name, cfg.CommandPermissions)
	})
	if !allowed {
		log.Printf("Permission denied: %s tried to use %s in guild %s", m.Author.Username, name, m.GuildID)
		return
	}

	ctx := &Context{Session: s, Bot: b, Message: m, Args: fields[1:]}
	if len(ctx.Args) < cmd.MinArgs {
		ctx.Reply(fmt.Sprintf("Error in command '%s': missing required arguments. Usage: %s%s", name, prefix, cmd.Usage))
		return
	}

	if err := cmd.Handler(ctx); err != nil {
		log.Printf("Error in command '%s': %v", name, err)
		if lerr := utils.LogError(s, b.LogChannelID(), "Commands", name, err.Error()); lerr != nil {
			log.Printf("Failed to send error log: %v", lerr)
		}
		ctx.Reply(fmt.Sprintf("Error in command '%s': %v", name, err))
	}
}

// RegisterAll populates the registry with the full administrative surface.
func RegisterAll(r *Registry) {
	registerChannelCommands(r)
	registerPrefixCommands(r)
	registerPermissionCommands(r)
	registerInfoCommands(r)
	registerSystemCommands(r)
}
