package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"triage-bot/model"
	"triage-bot/utils"
)

// channelSet names one of the three per-guild channel lists and how to
// reach it inside the config document.
type channelSet struct {
	label string
	sel   func(cfg *model.Config) map[string][]int64
}

var (
	readSet = channelSet{"OCR reading channels", func(cfg *model.Config) map[string][]int64 {
		return cfg.OCRReadChannels
	}}
	responseSet = channelSet{"OCR response channels", func(cfg *model.Config) map[string][]int64 {
		return cfg.OCRResponseChannels
	}}
	fallbackSet = channelSet{"OCR response fallback", func(cfg *model.Config) map[string][]int64 {
		return cfg.OCRResponseFallback
	}}
)

func registerChannelCommands(r *Registry) {
	type def struct {
		name string
		set  channelSet
		add  bool
		help string
	}
	defs := []def{
		{"add_ocr_read_channel", readSet, true, "Add a channel to the OCR read channels list for this server."},
		{"remove_ocr_read_channel", readSet, false, "Remove a channel from the OCR read channels list for this server."},
		{"add_ocr_response_channel", responseSet, true, "Add a channel to the OCR response channels list for this server."},
		{"remove_ocr_response_channel", responseSet, false, "Remove a channel from the OCR response channels list for this server."},
		{"add_ocr_response_fallback", fallbackSet, true, "Add a channel to the OCR response fallback list for this server."},
		{"remove_ocr_response_fallback", fallbackSet, false, "Remove a channel from the OCR response fallback list for this server."},
	}
	for _, d := range defs {
		d := d
		r.Register(&Command{
			Name:     d.name,
			Category: "OCR Configuration",
			Help:     d.help,
			Usage:    d.name + " <channel_id>",
			MinArgs:  1,
			Handler: func(ctx *Context) error {
				return handleChannelMutation(ctx, d.set, d.add)
			},
		})
	}
}

func handleChannelMutation(ctx *Context, set channelSet, add bool) error {
	channelID, err := strconv.ParseInt(ctx.Args[0], 10, 64)
	if err != nil {
		ctx.Reply(fmt.Sprintf("Channel ID %s is invalid", ctx.Args[0]))
		return nil
	}
	if !validChannelReference(ctx.Session, ctx.Message.GuildID, channelID) {
		ctx.Reply(fmt.Sprintf("Channel ID %d is invalid", channelID))
		return nil
	}

	guildID := ctx.Message.GuildID
	mention := fmt.Sprintf("<#%d>", channelID)

	var response string
	err = ctx.Bot.Store.Update(func(cfg *model.Config) error {
		channels := set.sel(cfg)
		list := channels[guildID]
		if add {
			if model.ContainsChannel(list, channelID) {
				response = fmt.Sprintf("Channel %s is already in the %s list for this server.", mention, set.label)
				return utils.ErrNoChange
			}
			channels[guildID] = append(list, channelID)
			response = fmt.Sprintf("Channel %s added to %s for this server.", mention, set.label)
			return nil
		}
		list, removed := model.RemoveChannel(list, channelID)
		if !removed {
			response = fmt.Sprintf("Channel %s is not in the %s list for this server.", mention, set.label)
			return utils.ErrNoChange
		}
		channels[guildID] = list
		return nil
	})
	if err != nil && !errors.Is(err, utils.ErrNoChange) {
		return err
	}
	if response == "" {
		response = fmt.Sprintf("Channel %s removed from %s for this server.", mention, set.label)
	}
	ctx.Reply(response)
	return nil
}

// validChannelReference checks that the id resolves to a text or thread
// channel belonging to the invoking guild.
func validChannelReference(s *discordgo.Session, guildID string, channelID int64) bool {
	ch, err := fetchChannel(s, strconv.FormatInt(channelID, 10))
	if err != nil || ch == nil {
		return false
	}
	if ch.GuildID != guildID {
		return false
	}
	switch ch.Type {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread:
		return true
	}
	return false
}

func fetchChannel(s *discordgo.Session, channelID string) (*discordgo.Channel, error) {
	if ch, err := s.State.Channel(channelID); err == nil {
		return ch, nil
	}
	return s.Channel(channelID)
}
