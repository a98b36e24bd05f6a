package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"graphics_feed/internal/domain"
)

func TestSectionURL(t *testing.T) {
	tests := []struct {
		name        string
		rawURL      string
		origin      string
		minSegments int
		want        string
	}{
		{
			name:   "dated nyt path uses segment after date",
			rawURL: "https://www.nytimes.com/2024/01/05/climate/heat-map.html",
			origin: "https://www.nytimes.com",
			want:   "https://www.nytimes.com/climate/",
		},
		{
			name:   "interactive path uses first segment",
			rawURL: "https://www.nytimes.com/interactive/2024/us/elections.html",
			origin: "https://www.nytimes.com",
			want:   "https://www.nytimes.com/interactive/",
		},
		{
			name:   "relative path resolved on origin",
			rawURL: "/graphics/2024-ai-chips/",
			origin: "https://www.bloomberg.com",
			want:   "https://www.bloomberg.com/graphics/",
		},
		{
			name:   "empty segments are ignored",
			rawURL: "https://www.reuters.com//graphics//x/",
			origin: "https://www.reuters.com",
			want:   "https://www.reuters.com/graphics/",
		},
		{
			name:        "too few segments",
			rawURL:      "https://www.scmp.com/infographics",
			origin:      "https://www.scmp.com",
			minSegments: 2,
			want:        "",
		},
		{
			name:   "root path",
			rawURL: "https://www.reuters.com/",
			origin: "https://www.reuters.com",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SectionURL(tt.rawURL, tt.origin, tt.minSegments))
		})
	}
}

func TestLabel_Nil(t *testing.T) {
	assert.Nil(t, Label("", "https://www.reuters.com", 1))
	assert.Equal(t, &domain.Label{URL: "https://www.reuters.com/world/"},
		Label("https://www.reuters.com/world/x", "https://www.reuters.com", 1))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "lazaro-gamio", Slugify("Lazaro Gamio"))
	assert.Equal(t, "ana-de-la-cruz", Slugify("  Ana  de\tla Cruz "))
	assert.Equal(t, "", Slugify(""))
}

func TestCredit(t *testing.T) {
	assert.Equal(t, domain.Credit{Name: "Josh Holder", Slug: "josh-holder"}, Credit("Josh Holder", ""))
	assert.Equal(t, domain.Credit{Name: "Josh Holder", Slug: "joshua-holder"}, Credit("Josh Holder", "/joshua-holder"))
	assert.Equal(t, domain.Credit{Name: domain.UnknownAuthor, Slug: "unknown"}, Credit("", ""))
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, domain.Untitled, OrDefault("  ", domain.Untitled))
	assert.Equal(t, "Heat", OrDefault("Heat", domain.Untitled))
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "https://www.reuters.com/graphics/x/", AbsoluteURL("https://www.reuters.com", "/graphics/x/"))
	assert.Equal(t, "https://other.com/a", AbsoluteURL("https://www.reuters.com", "https://other.com/a"))
	assert.Equal(t, "", AbsoluteURL("https://www.reuters.com", ""))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Russell Goldenberg", "Jan Diehm"}, SplitList("Russell Goldenberg, Jan Diehm,"))
	assert.Nil(t, SplitList(""))
}
