package bot

import (
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"

	"triage-bot/model"
	"triage-bot/ocr"
	"triage-bot/utils"
)

type Bot struct {
	Session  *discordgo.Session
	Store    *utils.ConfigStore
	Pipeline *ocr.Pipeline
	StatsDB  *sqlx.DB

	// OwnerID is resolved from the application info once the session is
	// open. Empty until then; permission checks treat empty as no owner.
	OwnerID string

	done      chan struct{}
	closeOnce sync.Once
}

func New(store *utils.ConfigStore, statsDB *sqlx.DB) (*Bot, error) {
	var token string
	store.View(func(cfg *model.Config) {
		token = cfg.Token
	})

	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	return &Bot{
		Session: dg,
		Store:   store,
		StatsDB: statsDB,
		done:    make(chan struct{}),
	}, nil
}

// RequestShutdown asks the run loop to exit. Safe to call more than once.
func (b *Bot) RequestShutdown() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	if b.StatsDB != nil {
		b.StatsDB.Close()
	}
	b.Session.Close()
}

// LogChannelID returns the configured operational log channel, if any.
func (b *Bot) LogChannelID() string {
	var id string
	b.Store.View(func(cfg *model.Config) {
		id = cfg.LogChannelID
	})
	return id
}
