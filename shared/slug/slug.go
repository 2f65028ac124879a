// Package slug derives and checks the URL-safe store identifiers used under /a2z/<slug>.
package slug

import (
	"regexp"
	"strings"

	"github.com/a2z-dev/a2z/shared/errors"
	gosimple "github.com/gosimple/slug"
)

const MinLength = 3

var (
	nonAlnum    = regexp.MustCompile(`[^a-z0-9]`)
	dashes      = regexp.MustCompile(`-+`)
	notSlugChar = regexp.MustCompile(`[^a-z0-9-]`)
)

// Normalize derives a slug from a business name: lowercase, every non-alphanumeric
// character becomes a hyphen, runs of hyphens collapse, edge hyphens are trimmed.
func Normalize(name string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(name), "-")
	s = dashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Sanitize cleans a slug typed by hand, keeping the hyphens the user placed.
func Sanitize(input string) string {
	return notSlugChar.ReplaceAllString(strings.ToLower(input), "")
}

// Validate reports a ValidationError when s cannot be used as a store slug.
func Validate(s string) error {
	if len(s) < MinLength {
		return errors.New(errors.ValidationError, "Store URL must be at least 3 characters.")
	}
	if !gosimple.IsSlug(s) {
		return errors.New(errors.ValidationError, "Store URL may only contain lowercase letters, digits and inner hyphens.")
	}
	return nil
}
