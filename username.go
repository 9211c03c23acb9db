package registration

import (
	"context"
	"strconv"
	"strings"
	"unicode"
)

// UsernameChecker is the store probe the generator needs.
type UsernameChecker interface {
	UsernameTaken(ctx context.Context, username string) (bool, error)
}

const (
	// maxSuffixAttempts bounds the sequential suffix search before the
	// generator falls back to random suffixes.
	maxSuffixAttempts = 10000
	// randomFallbackAttempts bounds the random-suffix retries.
	randomFallbackAttempts = 5
)

// GenerateUniqueUsername derives a free username from the local part of
// an email address: the slug of the text before "@", then the first of
// slug, slug2, slug3, ... not present in the store, always truncated so
// the candidate fits maxLength. When the sequential search space is
// exhausted a random suffix is tried; the store's unique constraint stays
// the authoritative guard either way.
func GenerateUniqueUsername(ctx context.Context, store UsernameChecker, text string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = DefaultUsernameMaxLength
	}

	base := Slugify(strings.SplitN(text, "@", 2)[0])
	if base == "" {
		base = "user"
	}

	for i := 0; i < maxSuffixAttempts; i++ {
		suffix := ""
		if i > 0 {
			suffix = strconv.Itoa(i + 1)
		}

		candidate := fitWithSuffix(base, suffix, maxLength)
		taken, err := store.UsernameTaken(ctx, candidate)
		if err != nil {
			return "", err
		}

		if !taken {
			return candidate, nil
		}
	}

	for i := 0; i < randomFallbackAttempts; i++ {
		suffix := randomToken(4)
		candidate := fitWithSuffix(base, suffix, maxLength)

		taken, err := store.UsernameTaken(ctx, candidate)
		if err != nil {
			return "", err
		}

		if !taken {
			return candidate, nil
		}
	}

	return "", ErrUsernameSpaceExhausted
}

func fitWithSuffix(base, suffix string, maxLength int) string {
	room := maxLength - len(suffix)
	if room < 0 {
		room = 0
	}

	if len(base) > room {
		base = base[:room]
	}

	return base + suffix
}

// Slugify normalizes arbitrary text into an identifier-safe slug:
// lowercase, characters outside [\w\s-] dropped, runs of whitespace and
// hyphens collapsed into a single hyphen.
func Slugify(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))

	var kept strings.Builder
	for _, r := range text {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			kept.WriteRune(r)
		case r == '_', r == '-', unicode.IsSpace(r):
			kept.WriteRune(r)
		}
	}

	var out strings.Builder
	pendingSep := false
	for _, r := range strings.Trim(kept.String(), "-\t\n\v\f\r ") {
		if r == '-' || unicode.IsSpace(r) {
			pendingSep = true
			continue
		}

		if pendingSep {
			out.WriteRune('-')
			pendingSep = false
		}
		out.WriteRune(r)
	}

	return out.String()
}
