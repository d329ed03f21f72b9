package ocr

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
)

// patternEntry is one element of the patterns.json array.
type patternEntry struct {
	Name     string `json:"name"`
	Pattern  string `json:"pattern"`
	Flags    string `json:"flags,omitempty"`
	Response string `json:"response"`
}

// regexFlags maps the flag names used in the signature library onto RE2
// inline flags.
var regexFlags = map[string]string{
	"DOTALL":     "s",
	"IGNORECASE": "i",
	"MULTILINE":  "m",
}

// LoadPatterns reads the signature library and compiles it into an ordered
// rule list. Entries that fail to compile are logged and skipped so one bad
// signature cannot take the matcher down.
func LoadPatterns(path string) ([]SignatureRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading patterns file %s: %w", path, err)
	}

	var entries []patternEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("error unmarshalling patterns file %s: %w", path, err)
	}

	rules := make([]SignatureRule, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == "" || entry.Pattern == "" {
			log.Printf("Skipping pattern with missing name or pattern: %+v", entry)
			continue
		}
		re, err := compilePattern(entry.Pattern, entry.Flags)
		if err != nil {
			log.Printf("Error compiling pattern %s: %v", entry.Name, err)
			continue
		}
		rules = append(rules, SignatureRule{
			Name:     entry.Name,
			Pattern:  re,
			Response: entry.Response,
		})
	}

	log.Printf("Loaded %d signature rules from %s", len(rules), path)
	return rules, nil
}

func compilePattern(pattern, flags string) (*regexp.Regexp, error) {
	var inline strings.Builder
	for _, flag := range strings.Split(flags, "|") {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}
		ch, ok := regexFlags[flag]
		if !ok {
			return nil, fmt.Errorf("unknown flag %q", flag)
		}
		inline.WriteString(ch)
	}
	if inline.Len() > 0 {
		pattern = "(?" + inline.String() + ")" + pattern
	}
	return regexp.Compile(pattern)
}
