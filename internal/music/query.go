package music

import (
	"net/url"
	"strings"
)

// searchPrefixes are the Lavalink search sources a query may already name.
var searchPrefixes = []string{"ytsearch:", "ytmsearch:", "scsearch:", "spsearch:", "amsearch:", "dzsearch:"}

// Identifier turns user input into a Lavalink load identifier. URLs and
// explicit searches pass through, anything else is searched with prefix.
func Identifier(query, prefix string) string {
	query = strings.TrimSpace(query)
	if query == "" || isURL(query) || prefix == "" {
		return query
	}
	for _, p := range searchPrefixes {
		if strings.HasPrefix(query, p) {
			return query
		}
	}
	return strings.TrimSuffix(prefix, ":") + ":" + query
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
