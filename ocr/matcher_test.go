package ocr

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRule(t *testing.T, name, pattern, response string) SignatureRule {
	t.Helper()
	return SignatureRule{Name: name, Pattern: regexp.MustCompile(pattern), Response: response}
}

func TestMatcherFirstMatchWins(t *testing.T) {
	m := NewMatcher([]SignatureRule{
		mustRule(t, "broad", "error", "!first"),
		mustRule(t, "specific", "error code 42", "!second"),
	})

	res := m.Match("fatal error code 42 detected")
	require.True(t, res.Matched)
	// Both rules match; the earlier-declared one wins regardless of
	// specificity.
	assert.Equal(t, "broad", res.RuleName)
	assert.Equal(t, "!first", res.Response)
}

func TestMatcherStopsAtFirstHit(t *testing.T) {
	m := NewMatcher([]SignatureRule{
		mustRule(t, "a", "alpha", "!a"),
		mustRule(t, "b", "beta", "!b"),
		mustRule(t, "c", "beta", "!c"),
	})

	res := m.Match("some beta text")
	require.True(t, res.Matched)
	assert.Equal(t, "b", res.RuleName)
}

func TestMatcherEchoFallback(t *testing.T) {
	m := NewMatcher([]SignatureRule{
		mustRule(t, "a", "alpha", "!a"),
	})

	input := "garbled OCR output\nwith multiple lines"
	res := m.Match(input)
	assert.False(t, res.Matched)
	assert.Empty(t, res.RuleName)
	// Identity fallback: unmatched text is echoed back exactly.
	assert.Equal(t, input, res.Response)
}

func TestMatcherMultilineDotall(t *testing.T) {
	m := NewMatcher([]SignatureRule{
		mustRule(t, "span", "(?s).*invalid_parameter_handler.*1087.*", "!1087"),
	})

	res := m.Match("stack trace:\ninvalid_parameter_handler\nexit code 1087\n")
	require.True(t, res.Matched)
	assert.Equal(t, "!1087", res.Response)
}

func TestCompilePatternFlags(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		flags   string
		input   string
		match   bool
	}{
		{"dotall spans newlines", "a.*b", "DOTALL", "a\nb", true},
		{"no dotall stops at newline", "a.*b", "", "a\nb", false},
		{"ignorecase", "openal", "IGNORECASE", "OpenAL error", true},
		{"combined", "a.*openal", "DOTALL|IGNORECASE", "a\nOpenAL", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := compilePattern(tt.pattern, tt.flags)
			require.NoError(t, err)
			assert.Equal(t, tt.match, re.MatchString(tt.input))
		})
	}
}

func TestCompilePatternUnknownFlag(t *testing.T) {
	_, err := compilePattern("x", "VERBOSE")
	assert.Error(t, err)
}

func TestLoadPatternsSkipsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.json")
	content := `[
		{"name": "good", "pattern": "alpha", "response": "!a"},
		{"name": "bad", "pattern": "(**broken", "response": "!b"},
		{"name": "", "pattern": "nameless", "response": "!c"},
		{"name": "last", "pattern": "omega", "flags": "IGNORECASE", "response": "!z"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rules, err := LoadPatterns(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "good", rules[0].Name)
	assert.Equal(t, "last", rules[1].Name)
	assert.True(t, rules[1].Pattern.MatchString("OMEGA"))
}

func TestLoadPatternsPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.json")
	content := `[
		{"name": "one", "pattern": "x", "response": "1"},
		{"name": "two", "pattern": "x", "response": "2"},
		{"name": "three", "pattern": "x", "response": "3"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rules, err := LoadPatterns(path)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	for i, want := range []string{"one", "two", "three"} {
		assert.Equal(t, want, rules[i].Name)
	}
}
