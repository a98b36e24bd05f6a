// Package normalize holds the helpers outlet normalizers share: defaults,
// section labels derived from article URLs and author slugs.
package normalize

import (
	"net/url"
	"regexp"
	"strings"

	"graphics_feed/internal/domain"
)

var reYear = regexp.MustCompile(`^\d{4}$`)

// OrDefault returns v, or def when v is blank.
func OrDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// Slugify lowercases name and joins its words with hyphens.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// Credit builds a credit, falling back to the slugified name when the outlet
// does not supply a slug.
func Credit(name, slug string) domain.Credit {
	name = OrDefault(name, domain.UnknownAuthor)
	slug = strings.TrimPrefix(strings.TrimSpace(slug), "/")
	if slug == "" {
		slug = Slugify(name)
	}
	return domain.Credit{Name: name, Slug: slug}
}

// Credits builds credits for plain author names.
func Credits(names ...string) []domain.Credit {
	credits := make([]domain.Credit, 0, len(names))
	for _, n := range names {
		credits = append(credits, Credit(n, ""))
	}
	return credits
}

// AbsoluteURL resolves ref against origin. Absolute refs are returned as is.
func AbsoluteURL(origin, ref string) string {
	if ref == "" {
		return ""
	}
	base, err := url.Parse(origin)
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// SectionURL derives the section link of an article: the first path segment
// of rawURL, or the fourth when the path starts with a /YYYY/MM/DD/ prefix,
// rebuilt on origin as https://host/segment/. It returns "" when the path
// has fewer than minSegments segments or rawURL cannot be parsed.
func SectionURL(rawURL, origin string, minSegments int) string {
	base, err := url.Parse(origin)
	if err != nil || base.Host == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	u = base.ResolveReference(u)

	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 || len(segments) < minSegments {
		return ""
	}

	section := segments[0]
	if len(segments) > 3 && reYear.MatchString(segments[0]) {
		section = segments[3]
	}

	return "https://" + base.Host + "/" + section + "/"
}

// Label wraps SectionURL into a label, or nil when no section is derivable.
func Label(rawURL, origin string, minSegments int) *domain.Label {
	section := SectionURL(rawURL, origin, minSegments)
	if section == "" {
		return nil
	}
	return &domain.Label{URL: section}
}

// SplitList splits a comma separated field and drops blank entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
