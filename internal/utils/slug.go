package utils

import (
	"github.com/gosimple/slug"
)

// postSlugSeparator joins the title part and the author part of a post slug.
const postSlugSeparator = "-by-"

// MakeSlug derives a lowercase, hyphenated, URL-safe identifier from a
// display name. Deterministic: the same name always yields the same slug.
func MakeSlug(name string) string {
	return slug.Make(name)
}

// PostSlug derives a post's slug from its title and its author's username,
// so two authors can publish posts with the same title.
func PostSlug(title, username string) string {
	return slug.Make(title) + postSlugSeparator + slug.Make(username)
}
