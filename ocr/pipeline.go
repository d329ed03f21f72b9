package ocr

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"

	"triage-bot/model"
	"triage-bot/utils"
	"triage-bot/utils/database"
)

// pipelineTimeout bounds one message's external work: image fetches and the
// extractor run. A hung remote can only stall its own message, and only
// this long.
const pipelineTimeout = 60 * time.Second

// Pipeline wires the gate, extractor, matcher and router together. One
// Process call handles one message; calls are independent and run on their
// own goroutines with no ordering between them.
type Pipeline struct {
	Sender       Sender
	Store        *utils.ConfigStore
	Gate         *Gate
	Extractor    Extractor
	Audit        *AuditLog
	StatsDB      *sqlx.DB
	PatternsPath string

	matcher atomic.Value // *Matcher
}

// NewPipeline loads the signature library and assembles the pipeline.
func NewPipeline(sender Sender, store *utils.ConfigStore, gate *Gate, extractor Extractor, audit *AuditLog, statsDB *sqlx.DB, patternsPath string) (*Pipeline, error) {
	p := &Pipeline{
		Sender:       sender,
		Store:        store,
		Gate:         gate,
		Extractor:    extractor,
		Audit:        audit,
		StatsDB:      statsDB,
		PatternsPath: patternsPath,
	}
	rules, err := LoadPatterns(patternsPath)
	if err != nil {
		return nil, err
	}
	p.matcher.Store(NewMatcher(rules))
	return p, nil
}

// Matcher returns the current rule set. The value is swapped wholesale on
// reload, so callers always see a consistent ordered list.
func (p *Pipeline) Matcher() *Matcher {
	return p.matcher.Load().(*Matcher)
}

// ReloadPatterns re-reads the signature library and swaps the matcher.
// Returns the number of rules now active.
func (p *Pipeline) ReloadPatterns() (int, error) {
	rules, err := LoadPatterns(p.PatternsPath)
	if err != nil {
		return 0, err
	}
	m := NewMatcher(rules)
	p.matcher.Store(m)
	return m.Len(), nil
}

// Process runs the triage pipeline for one message: gate, extract, match,
// route. All failures are contained here; only the gate's validation
// messages ever reach the user.
func (p *Pipeline) Process(m *discordgo.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
	defer cancel()

	result, err := p.Gate.Evaluate(ctx, m)
	if err != nil {
		log.Printf("Image sourcing failed for message %s: %v", m.ID, err)
		return
	}
	if result.UserMessage != "" {
		Respond(p.Sender, p.Store, m, result.UserMessage)
		return
	}
	if !result.Accepted {
		return
	}

	start := time.Now()
	text, err := p.Extractor.ExtractText(ctx, result.Data)
	if err != nil {
		log.Printf("Text extraction failed for message %s: %v", m.ID, err)
		return
	}
	log.Printf("Transcription took %s", time.Since(start))

	res := p.Matcher().Match(text)
	if res.Matched {
		log.Printf("Pattern found: %s", res.RuleName)
		if err := p.Audit.Append(m.Author.Username, res.RuleName, text); err != nil {
			log.Printf("Error writing audit record: %v", err)
		}
		if p.StatsDB != nil {
			if err := database.RecordMatch(p.StatsDB, m.GuildID, res.RuleName, m.Author.ID); err != nil {
				log.Printf("Error recording match stat: %v", err)
			}
		}
		Respond(p.Sender, p.Store, m, res.Response)
		return
	}

	log.Printf("No pattern found for message %s", m.ID)
	var echo bool
	p.Store.View(func(cfg *model.Config) {
		echo = cfg.EchoUnmatched(m.GuildID)
	})
	if echo {
		Respond(p.Sender, p.Store, m, res.Response)
	}
}
