package bloomberg

// APIResponse is keyed by the lineup endpoint id that was requested.
type APIResponse map[string]Lineup

type Lineup struct {
	Items []Item `json:"items"`
}

type Item struct {
	ID          string   `json:"id"`
	Headline    string   `json:"headline"`
	URL         string   `json:"url"`
	PublishedAt string   `json:"publishedAt"`
	Summary     string   `json:"summary"`
	Credits     []Credit `json:"credits"`
	Image       *Image   `json:"image"`
}

type Credit struct {
	Name string `json:"name"`
}

type Image struct {
	BaseURL string `json:"baseUrl"`
}
