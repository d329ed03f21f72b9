package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"triage-bot/utils"
)

func (b *Bot) Run() {
	if err := b.Session.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	app, err := b.Session.Application("@me")
	if err != nil {
		log.Printf("Could not fetch application info: %v", err)
		if lerr := utils.LogWarn(b.Session, b.LogChannelID(), "System", "Startup", "Could not resolve the application owner; owner-only commands are disabled."); lerr != nil {
			log.Printf("Failed to send startup warning: %v", lerr)
		}
	} else if app.Owner != nil {
		b.OwnerID = app.Owner.ID
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	if err := utils.LogInfo(b.Session, b.LogChannelID(), "System", "Startup", "Bot has started successfully."); err != nil {
		log.Printf("Failed to send startup log: %v", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	select {
	case <-sc:
	case <-b.done:
	}
}
