package restyutil

import (
	random "github.com/mazen160/go-random"
)

// the sites fingerprint repeat visitors by user-agent, rotating across
// a small pool of current desktop browsers keeps the clients boring
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
}

// RandomUserAgent picks a user-agent for a new client session.
func RandomUserAgent() string {
	i, err := random.IntRange(0, len(userAgents))
	if err != nil {
		return userAgents[0]
	}
	return userAgents[i]
}
