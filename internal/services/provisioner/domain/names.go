package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Names are the deterministic resource names derived from a project title.
// Identical titles always produce identical names; this is what makes
// re-provisioning idempotent.
type Names struct {
	Slug          string
	ClientGroup   string
	ResourceGroup string
	Folder        string
}

// NamesFor derives the workspace resource names for a project title.
func NamesFor(title string) Names {
	slug := Slugify(title)
	return Names{
		Slug:          slug,
		ClientGroup:   "project-" + slug + "-client",
		ResourceGroup: "project-" + slug + "-resources",
		Folder:        "Project - " + strings.TrimSpace(title),
	}
}

// diacriticFold strips combining marks so accented titles slug cleanly.
var diacriticFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases a title, folds diacritics, and collapses every run of
// non-alphanumeric characters into a single dash.
func Slugify(title string) string {
	folded, _, err := transform.String(diacriticFold, title)
	if err != nil {
		folded = title
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range folded {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingDash = b.Len() > 0
			continue
		}
		if pendingDash {
			b.WriteByte('-')
			pendingDash = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
