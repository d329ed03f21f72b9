package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init opens the match-statistics database and ensures its schema exists.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS ocr_matches (
	          match_id INTEGER PRIMARY KEY AUTOINCREMENT,
	          guild_id TEXT NOT NULL,
	          rule_name TEXT NOT NULL,
	          author_id TEXT NOT NULL,
	          matched_at INTEGER NOT NULL
	      );`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create ocr_matches table: %w", err)
	}

	indexStmt := `CREATE INDEX IF NOT EXISTS idx_ocr_matches_guild ON ocr_matches (guild_id, rule_name);`
	if _, err := db.Exec(indexStmt); err != nil {
		return nil, fmt.Errorf("failed to create ocr_matches index: %w", err)
	}

	return db, nil
}

// RecordMatch appends one row per successful signature match.
func RecordMatch(db *sqlx.DB, guildID, ruleName, authorID string) error {
	_, err := db.Exec(
		`INSERT INTO ocr_matches (guild_id, rule_name, author_id, matched_at) VALUES (?, ?, ?, ?)`,
		guildID, ruleName, authorID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record match: %w", err)
	}
	return nil
}

// RuleCount is one row of the per-guild match leaderboard.
type RuleCount struct {
	RuleName string `db:"rule_name"`
	Count    int    `db:"count"`
}

// TopRules returns the most frequently matched rules for a guild.
func TopRules(db *sqlx.DB, guildID string, limit int) ([]RuleCount, error) {
	var rows []RuleCount
	err := db.Select(&rows,
		`SELECT rule_name, COUNT(*) AS count FROM ocr_matches
		 WHERE guild_id = ? GROUP BY rule_name ORDER BY count DESC LIMIT ?`,
		guildID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query top rules: %w", err)
	}
	return rows, nil
}

// GuildMatchCount returns the total number of matches recorded for a guild.
func GuildMatchCount(db *sqlx.DB, guildID string) (int, error) {
	var count int
	err := db.Get(&count, `SELECT COUNT(*) FROM ocr_matches WHERE guild_id = ?`, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}
