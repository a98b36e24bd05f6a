package domain

import (
	"bytes"
	"encoding/json"
)

// Placeholders used when a field cannot be read from the outlet record.
const (
	NoID          = "No ID"
	Untitled      = "Untitled"
	NoURL         = "No URL"
	UnknownDate   = "Unknown date"
	NoDescription = "No description available"
	NoImage       = "No Image"
	UnknownAuthor = "Unknown"
)

// Article is the record stored per outlet and merged into the unified feed.
type Article struct {
	ID          string   `json:"id"`
	Headline    string   `json:"headline"`
	URL         string   `json:"url"`
	Label       *Label   `json:"label"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Credits     []Credit `json:"credits"`
	Img         string   `json:"img"`
	Thumbnail   string   `json:"square_img,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	// Medium is only set on aggregated output.
	Medium string `json:"medium,omitempty"`
}

// HasImage reports whether img holds a usable URL.
func (a Article) HasImage() bool {
	return a.Img != "" && a.Img != NoImage
}

type Credit struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Label is a section link. It is serialized as a bare URL string unless it
// carries display text or is marked Structured, in which case it becomes
// {"text", "url"}.
type Label struct {
	Text string
	URL  string
	// Structured keeps the object form even when Text is empty, for outlets
	// whose labels are always {"text", "url"}.
	Structured bool
}

func (l Label) MarshalJSON() ([]byte, error) {
	if l.Text == "" && !l.Structured {
		return json.Marshal(l.URL)
	}
	return json.Marshal(struct {
		Text string `json:"text"`
		URL  string `json:"url"`
	}{l.Text, l.URL})
}

func (l *Label) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		l.Structured = false
		return json.Unmarshal(data, &l.URL)
	}

	var obj struct {
		Text string `json:"text"`
		URL  string `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	l.Text = obj.Text
	l.URL = obj.URL
	l.Structured = true
	return nil
}
