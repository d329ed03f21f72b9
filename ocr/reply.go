package ocr

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

// maxMessageLen is the platform's single-message length ceiling.
const maxMessageLen = 2000

// Sender is the slice of the Discord session the pipeline needs to deliver
// messages. *discordgo.Session satisfies it.
type Sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ChunkText splits text into ordered pieces of at most limit runes.
// Concatenating the pieces reproduces the input exactly.
func ChunkText(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	var chunks []string
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// ReplyTo delivers text as a reply to the referenced message, splitting
// oversized payloads into sequential chunks. Empty text is rejected.
func ReplyTo(s Sender, channelID, messageID, guildID, text string) {
	if text == "" {
		log.Println("No text found to reply")
		return
	}
	ref := &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
		GuildID:   guildID,
	}
	for _, chunk := range ChunkText(text, maxMessageLen) {
		sent, err := s.ChannelMessageSendReply(channelID, chunk, ref)
		if err != nil {
			log.Printf("Error sending reply to channel %s: %v", channelID, err)
			return
		}
		log.Printf("Response sent to channel %s: %s", channelID, sent.Content)
	}
}
