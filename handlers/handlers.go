package handlers

import (
	"log"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"triage-bot/bot"
	"triage-bot/commands"
	"triage-bot/model"
)

// Register wires the gateway handlers and the command registry.
func Register(b *bot.Bot) {
	registry := commands.NewRegistry()
	commands.RegisterAll(registry)

	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		handleMessage(s, m, b, registry)
	})
}

// handleMessage is the single entry point for inbound guild messages. A
// guild seen for the first time gets its empty read-channel list persisted
// before anything else, including the bot-author check.
func handleMessage(s *discordgo.Session, m *discordgo.MessageCreate, b *bot.Bot, registry *commands.Registry) {
	if m.GuildID == "" || m.Author == nil {
		return
	}

	created, err := b.Store.EnsureReadChannels(m.GuildID)
	if err != nil {
		log.Printf("Error registering guild %s: %v", m.GuildID, err)
	} else if created {
		log.Printf("No read channels found for guild %s. Creating new channel list", m.GuildID)
	}

	if m.Author.Bot {
		return
	}

	channelID, err := strconv.ParseInt(m.ChannelID, 10, 64)
	if err != nil {
		log.Printf("Unparseable channel id %s: %v", m.ChannelID, err)
		return
	}

	var isReadChannel bool
	b.Store.View(func(cfg *model.Config) {
		isReadChannel = model.ContainsChannel(cfg.OCRReadChannels[m.GuildID], channelID)
	})
	if isReadChannel {
		// Each message is an independent unit of work; no ordering is
		// guaranteed between messages, even within one channel.
		go b.Pipeline.Process(m.Message)
	}

	registry.Dispatch(s, m, b)
}
