package scmp

// Document is the static graphics sheet export.
type Document struct {
	Entries []Entry `json:"entries"`
}

type Entry struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Desc       string `json:"desc"`
	Creator1   string `json:"creator1"`
	Creator2   string `json:"creator2"`
	Creator3   string `json:"creator3"`
	ImageURL   string `json:"imageurl"`
	CoverImage string `json:"coverimage"`
}
