package wapo

// APIResponse is the prism author-feed response.
type APIResponse struct {
	Items []Item `json:"items"`
}

type Item struct {
	ID                   string        `json:"_id"`
	CanonicalURL         string        `json:"canonical_url"`
	FirstPublishDate     string        `json:"first_publish_date"`
	Headlines            Text          `json:"headlines"`
	Description          Text          `json:"description"`
	Credits              Credits       `json:"credits"`
	LabelDisplay         *LabelDisplay `json:"label_display"`
	AdditionalProperties struct {
		LeadArt *LeadArt `json:"lead_art"`
	} `json:"additional_properties"`
}

type Text struct {
	Basic string `json:"basic"`
}

type Credits struct {
	By []Person `json:"by"`
}

type Person struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type LabelDisplay struct {
	Basic struct {
		HeadlinePrefix string `json:"headline_prefix"`
		URL            string `json:"url"`
	} `json:"basic"`
}

type LeadArt struct {
	URL                  string `json:"url"`
	AdditionalProperties struct {
		ThumbnailResizeURL string `json:"thumbnailResizeUrl"`
		OriginalURL        string `json:"originalUrl"`
	} `json:"additional_properties"`
}

// query is the JSON document passed in the query parameter.
type query struct {
	Slug  string `json:"slug"`
	From  string `json:"from"`
	To    string `json:"to"`
	Limit int    `json:"limit"`
}
