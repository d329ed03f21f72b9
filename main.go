package main

import (
	"log"
	"os"

	"triage-bot/bot"
	"triage-bot/handlers"
	"triage-bot/ocr"
	"triage-bot/utils"
	"triage-bot/utils/database"
)

func main() {
	store := LoadStore()

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	statsDB, err := database.Init("./data/stats.db")
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	b, err := bot.New(store, statsDB)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	pipeline, err := ocr.NewPipeline(
		b.Session,
		store,
		&ocr.Gate{Client: utils.GlobalHTTPClient},
		ocr.NewTesseractExtractor(),
		ocr.NewAuditLog("./data/audit.log"),
		statsDB,
		PatternsPath(),
	)
	if err != nil {
		log.Fatalf("Error building OCR pipeline: %v", err)
	}
	b.Pipeline = pipeline

	handlers.Register(b)

	defer b.Close()
	b.Run()
}
