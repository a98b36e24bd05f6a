package fetch

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrowser_RotatesConfiguredAgents(t *testing.T) {
	agents := []string{"agent-a", "agent-b", "agent-c"}
	b := NewBrowser(BrowserConfig{UserAgents: agents}, testLogger())

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		ua := b.RandomUserAgent()
		assert.Contains(t, agents, ua)
		seen[ua] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestBrowser_DefaultAgents(t *testing.T) {
	b := NewBrowser(BrowserConfig{}, testLogger())
	assert.Contains(t, DefaultUserAgents, b.RandomUserAgent())
}

func TestExtraHeaders_SkipsUserAgent(t *testing.T) {
	h := http.Header{}
	h.Set("Referer", "https://www.reuters.com/")
	h.Set("User-Agent", "fixed")

	assert.Equal(t, []string{"Referer", "https://www.reuters.com/"}, extraHeaders(h))
	assert.Empty(t, extraHeaders(nil))
}
