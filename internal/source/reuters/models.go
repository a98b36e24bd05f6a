package reuters

// APIResponse is the articles-by-collection response.
type APIResponse struct {
	StatusCode int `json:"statusCode"`
	Result     struct {
		Articles   []Item `json:"articles"`
		Pagination struct {
			Size      int `json:"size"`
			TotalSize int `json:"total_size"`
		} `json:"pagination"`
	} `json:"result"`
}

type Item struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	CanonicalURL  string     `json:"canonical_url"`
	PublishedTime string     `json:"published_time"`
	Description   string     `json:"description"`
	Authors       []Author   `json:"authors"`
	Thumbnail     *Thumbnail `json:"thumbnail"`
}

type Author struct {
	Name string `json:"name"`
}

type Thumbnail struct {
	URL string `json:"url"`
}

// query is the JSON document passed in the query parameter.
type query struct {
	CollectionID string `json:"collection_id"`
	Offset       int    `json:"offset"`
	Size         int    `json:"size"`
	Website      string `json:"website"`
}
