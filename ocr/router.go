package ocr

import (
	"fmt"
	"log"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"triage-bot/model"
	"triage-bot/utils"
)

type routeKind int

const (
	routeNone routeKind = iota
	routeInPlace
	routeChannel
)

// selectDestination applies the routing tiers: reply in place when the
// originating channel is itself a response channel; otherwise the first
// response channel that is not also scanned for input; otherwise the
// first fallback channel, which gets no anti-loop filter.
func selectDestination(origin int64, read, response, fallback []int64) (routeKind, int64) {
	if model.ContainsChannel(response, origin) {
		return routeInPlace, origin
	}
	for _, id := range response {
		if !model.ContainsChannel(read, id) {
			return routeChannel, id
		}
	}
	if len(fallback) > 0 {
		return routeChannel, fallback[0]
	}
	return routeNone, 0
}

// Respond routes response text for the originating message. Remote
// destinations get a permalink to the original message first, then the
// response as a reply to that permalink.
func Respond(s Sender, store *utils.ConfigStore, m *discordgo.Message, response string) {
	if response == "" {
		log.Println("No response message found")
		return
	}

	origin, err := strconv.ParseInt(m.ChannelID, 10, 64)
	if err != nil {
		log.Printf("Unparseable channel id %s: %v", m.ChannelID, err)
		return
	}

	if _, err := store.EnsureResponseChannels(m.GuildID); err != nil {
		log.Printf("Error registering response channels for guild %s: %v", m.GuildID, err)
	}

	var read, responseChans, fallback []int64
	store.View(func(cfg *model.Config) {
		read = cfg.OCRReadChannels[m.GuildID]
		responseChans = cfg.OCRResponseChannels[m.GuildID]
		fallback = cfg.OCRResponseFallback[m.GuildID]
	})

	kind, dest := selectDestination(origin, read, responseChans, fallback)
	switch kind {
	case routeInPlace:
		ReplyTo(s, m.ChannelID, m.ID, m.GuildID, response)
	case routeChannel:
		destID := strconv.FormatInt(dest, 10)
		permalink := fmt.Sprintf("https://discord.com/channels/%s/%s/%s", m.GuildID, m.ChannelID, m.ID)
		sent, err := s.ChannelMessageSend(destID, permalink)
		if err != nil {
			log.Printf("Error posting permalink to channel %s: %v", destID, err)
			return
		}
		ReplyTo(s, destID, sent.ID, m.GuildID, response)
	default:
		log.Printf("No response channel configured for guild %s", m.GuildID)
	}
}
