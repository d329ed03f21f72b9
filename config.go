package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"triage-bot/model"
	"triage-bot/utils"
)

const (
	defaultConfigPath   = "config.json"
	defaultPatternsPath = "patterns.json"
)

// LoadStore loads the configuration document, applying environment
// overrides. BOT_TOKEN takes precedence over the token field so the secret
// can stay out of the config file.
func LoadStore() *utils.ConfigStore {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	store, err := utils.LoadConfigStore(path)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	token := os.Getenv("BOT_TOKEN")
	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, channel logging will be disabled")
	}

	var missingToken bool
	// Env overrides are in-memory only; Update would persist the token
	// into the file.
	store.ApplyOverrides(func(cfg *model.Config) {
		if token != "" {
			cfg.Token = token
		}
		cfg.LogChannelID = logChannelID
		missingToken = cfg.Token == ""
	})
	if missingToken {
		log.Fatal("Error: no bot token in BOT_TOKEN or config file")
	}

	return store
}

// PatternsPath returns the signature library location.
func PatternsPath() string {
	if p := os.Getenv("PATTERNS_PATH"); p != "" {
		return p
	}
	return defaultPatternsPath
}
