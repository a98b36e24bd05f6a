package nyt

// APIResponse is the CollectionsQuery GraphQL response.
type APIResponse struct {
	Data struct {
		LegacyCollection *struct {
			CollectionsPage *struct {
				Stream *Stream `json:"stream"`
			} `json:"collectionsPage"`
		} `json:"legacyCollection"`
	} `json:"data"`
}

type Stream struct {
	Edges    []Edge   `json:"edges"`
	PageInfo PageInfo `json:"pageInfo"`
}

type PageInfo struct {
	EndCursor   *string `json:"endCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

type Edge struct {
	Node Node `json:"node"`
}

type Node struct {
	ID               string            `json:"id"`
	URL              string            `json:"url"`
	FirstPublished   string            `json:"firstPublished"`
	Summary          string            `json:"summary"`
	Headline         *Headline         `json:"headline"`
	Bylines          []Byline          `json:"bylines"`
	PromotionalMedia *PromotionalMedia `json:"promotionalMedia"`
}

type Headline struct {
	Default string `json:"default"`
}

type Byline struct {
	Creators []Creator `json:"creators"`
}

type Creator struct {
	DisplayName string `json:"displayName"`
	URL         string `json:"url"`
}

type PromotionalMedia struct {
	Crops []Crop `json:"crops"`
}

type Crop struct {
	Renditions []Rendition `json:"renditions"`
}

type Rendition struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
