package model

// Config is the full durable configuration document. Everything except the
// token and log channel is keyed per guild and mutated at runtime through
// the config store.
type Config struct {
	Token               string                  `json:"token"`
	CommandPrefix       string                  `json:"command_prefix"`
	OCRReadChannels     map[string][]int64      `json:"ocr_read_channels"`
	OCRResponseChannels map[string][]int64      `json:"ocr_response_channels"`
	OCRResponseFallback map[string][]int64      `json:"ocr_response_fallback"`
	CommandPermissions  map[string]*GuildGrants `json:"command_permissions"`
	ServerPrefixes      map[string]string       `json:"server_prefixes"`
	OCREchoUnmatched    map[string]bool         `json:"ocr_echo_unmatched,omitempty"`

	// LogChannelID comes from the environment, not the config file.
	LogChannelID string `json:"-"`
}

// EnsureMaps initializes any nil maps so callers can index without checking.
func (c *Config) EnsureMaps() {
	if c.OCRReadChannels == nil {
		c.OCRReadChannels = make(map[string][]int64)
	}
	if c.OCRResponseChannels == nil {
		c.OCRResponseChannels = make(map[string][]int64)
	}
	if c.OCRResponseFallback == nil {
		c.OCRResponseFallback = make(map[string][]int64)
	}
	if c.CommandPermissions == nil {
		c.CommandPermissions = make(map[string]*GuildGrants)
	}
	if c.ServerPrefixes == nil {
		c.ServerPrefixes = make(map[string]string)
	}
	if c.OCREchoUnmatched == nil {
		c.OCREchoUnmatched = make(map[string]bool)
	}
}

// PrefixFor returns the command prefix for a guild, falling back to the
// global prefix when the guild has no override.
func (c *Config) PrefixFor(guildID string) string {
	if p, ok := c.ServerPrefixes[guildID]; ok && p != "" {
		return p
	}
	return c.CommandPrefix
}

// EchoUnmatched reports whether unmatched OCR text should be echoed back
// for a guild. Guilds without an explicit setting keep the echo on.
func (c *Config) EchoUnmatched(guildID string) bool {
	if v, ok := c.OCREchoUnmatched[guildID]; ok {
		return v
	}
	return true
}

// ContainsChannel reports whether a channel set contains the given id.
func ContainsChannel(set []int64, id int64) bool {
	for _, c := range set {
		if c == id {
			return true
		}
	}
	return false
}

// RemoveChannel returns the set without the given id and whether it was
// present.
func RemoveChannel(set []int64, id int64) ([]int64, bool) {
	for i, c := range set {
		if c == id {
			return append(set[:i], set[i+1:]...), true
		}
	}
	return set, false
}
