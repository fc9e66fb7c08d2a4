package post

import "strings"

// Slugify derives a URL slug from a post title: spaces become hyphens, the
// result is lowercased, and anything outside [a-z0-9-] is dropped.
func Slugify(title string) string {
	s := strings.ToLower(strings.Join(strings.Fields(title), "-"))
	var b strings.Builder
	for _, r := range s {
		if r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
