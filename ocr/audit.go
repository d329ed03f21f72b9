package ocr

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// AuditLog appends one record per successful signature match: a header line
// with timestamp, author and rule name, then the raw extracted text.
// Records are never rewritten.
type AuditLog struct {
	mu   sync.Mutex
	path string
}

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

func (a *AuditLog) Append(authorName, ruleName, rawText string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error opening audit log %s: %w", a.path, err)
	}
	defer f.Close()

	entry := fmt.Sprintf("%s - %s - %s\n%s\n",
		time.Now().Format("2006-01-02 15:04:05"), authorName, ruleName, rawText)
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("error writing audit log %s: %w", a.path, err)
	}
	return nil
}
