package config

import (
	"strings"
)

const (
	tokensListKey  = "DISCORD_BOT_TOKENS"
	tokenPrefixKey = "DISCORD_TOKEN"
)

// LoadTokens collects bot tokens from an environment in os.Environ form.
//
// DISCORD_BOT_TOKENS holds a comma or newline separated list. Every variable
// whose name starts with DISCORD_TOKEN contributes one more token. Blank
// entries are dropped and duplicates are removed, keeping the first
// occurrence.
func LoadTokens(environ []string) []string {
	var tokens []string

	env := make([][2]string, 0, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env = append(env, [2]string{key, value})
	}

	for _, kv := range env {
		if kv[0] != tokensListKey {
			continue
		}
		raw := strings.ReplaceAll(kv[1], "\n", ",")
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tokens = append(tokens, t)
			}
		}
	}

	for _, kv := range env {
		if !strings.HasPrefix(kv[0], tokenPrefixKey) {
			continue
		}
		if t := strings.TrimSpace(kv[1]); t != "" {
			tokens = append(tokens, t)
		}
	}

	seen := make(map[string]struct{}, len(tokens))
	unique := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}
	return unique
}
