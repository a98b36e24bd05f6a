// Package imagery finds representative images for articles that lack one.
package imagery

import (
	"regexp"
	"strings"

	"graphics_feed/internal/domain"
)

var reVersionSuffix = regexp.MustCompile(`-v\d+(\.\w{3,4})$`)

// Transform derives a large image URL from a known thumbnail by swapping
// the size-variant token and dropping the "-vN" version suffix. No request
// is made.
type Transform struct {
	From string
	To   string
}

// DefaultTransform turns NYT square thumbnails into their share-size crop.
var DefaultTransform = Transform{From: "square320", To: "facebookJumbo"}

// Apply returns the derived URL, or false when thumbnail is empty or does
// not carry the From token.
func (t Transform) Apply(thumbnail string) (string, bool) {
	if thumbnail == "" || thumbnail == domain.NoImage || t.From == "" {
		return "", false
	}
	if !strings.Contains(thumbnail, t.From) {
		return "", false
	}

	img := strings.Replace(thumbnail, t.From, t.To, 1)
	img = reVersionSuffix.ReplaceAllString(img, "$1")
	return img, true
}
