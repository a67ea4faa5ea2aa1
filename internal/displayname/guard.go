// Package displayname keeps user-facing names free of blanks and raw identifiers.
package displayname

import (
	"regexp"
	"strings"
)

// Fallback is shown when no usable name exists.
const Fallback = "Usuario"

// MaxLength is the longest name Apply keeps before truncating.
const MaxLength = 80

var (
	uuidRegex       = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// IsUUID reports whether s is a canonical 8-4-4-4-12 hex identifier.
func IsUUID(s string) bool {
	return uuidRegex.MatchString(s)
}

// Sanitize returns the trimmed candidate, or Fallback when it is blank or
// UUID-shaped.
func Sanitize(candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" || IsUUID(trimmed) {
		return Fallback
	}
	return trimmed
}

// SanitizePtr is Sanitize for nullable columns.
func SanitizePtr(candidate *string) string {
	if candidate == nil {
		return Fallback
	}
	return Sanitize(*candidate)
}

// IsValid reports whether candidate survives Sanitize unchanged apart from trimming.
func IsValid(candidate string) bool {
	trimmed := strings.TrimSpace(candidate)
	return trimmed != "" && !IsUUID(trimmed)
}

// Source records which rule produced the name returned by Apply.
type Source string

const (
	SourceOriginal      Source = "original"
	SourceEmailFallback Source = "emailFallback"
	SourceNormalized    Source = "normalized"
	SourceTruncated     Source = "truncated"
)

// Result is the outcome of Apply.
type Result struct {
	Name     string
	Source   Source
	Modified bool
	Reason   string
}

// Apply picks the name to persist on a profile save. A valid existing name is
// never overwritten. A blank or UUID-shaped name is replaced by the local part
// of email. Repeated whitespace is collapsed and names longer than MaxLength
// are cut at the last word boundary.
func Apply(name, email, existing string) Result {
	if IsValid(existing) {
		return Result{Name: existing, Source: SourceOriginal}
	}

	res := Result{Source: SourceOriginal}
	trimmed := strings.TrimSpace(name)
	processed := trimmed

	switch {
	case trimmed == "":
		processed = emailLocalPart(email)
		res.Source = SourceEmailFallback
		res.Reason = "empty or whitespace name"
	case IsUUID(trimmed):
		processed = emailLocalPart(email)
		res.Source = SourceEmailFallback
		res.Reason = "uuid used as name"
	}

	if normalized := whitespaceRegex.ReplaceAllString(processed, " "); normalized != processed {
		processed = normalized
		res.Source = SourceNormalized
	}

	if n := len([]rune(processed)); n > MaxLength {
		processed = truncate(processed, MaxLength)
		res.Source = SourceTruncated
		res.Reason = "longer than max length"
	}

	res.Name = processed
	res.Modified = processed != name
	return res
}

// Guard switches the write-side rules on and off.
type Guard struct {
	Enabled bool
}

// Apply is the package-level Apply when the guard is enabled. Disabled, it
// keeps a non-empty existing name, otherwise takes name as given, falling
// back to the email local part only when name is empty.
func (g Guard) Apply(name, email, existing string) Result {
	if g.Enabled {
		return Apply(name, email, existing)
	}
	switch {
	case name != "":
		return Result{Name: name, Source: SourceOriginal}
	case existing != "":
		return Result{Name: existing, Source: SourceOriginal}
	default:
		return Result{Name: emailLocalPart(email), Source: SourceOriginal}
	}
}

func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.TrimSpace(local)
	if local == "" {
		return strings.ToLower(Fallback)
	}
	return local
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	cut := string(r[:max])
	if i := strings.LastIndex(cut, " "); i > 0 {
		return cut[:i]
	}
	return cut
}

var (
	invalidAvatarPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^data:[,;]`),
		// 404 as its own token, so hex object names containing it survive.
		regexp.MustCompile(`(^|[^0-9A-Za-z])404([^0-9A-Za-z]|$)`),
		regexp.MustCompile(`(?i)not-found`),
		uuidRegex,
	}
	localAvatarPatterns = []*regexp.Regexp{
		regexp.MustCompile(`localhost`),
		regexp.MustCompile(`127\.0\.0\.1`),
	}
)

// AvatarPolicy decides which stored avatar values may be shown to other users.
type AvatarPolicy struct {
	// AllowLocal keeps localhost URLs, which only resolve in development.
	AllowLocal bool
}

// Clean returns the trimmed avatar URL, or false when the value is blank or
// known to be broken.
func (p AvatarPolicy) Clean(avatar string) (string, bool) {
	trimmed := strings.TrimSpace(avatar)
	if trimmed == "" {
		return "", false
	}
	for _, re := range invalidAvatarPatterns {
		if re.MatchString(trimmed) {
			return "", false
		}
	}
	if !p.AllowLocal {
		for _, re := range localAvatarPatterns {
			if re.MatchString(trimmed) {
				return "", false
			}
		}
	}
	return trimmed, true
}

// CleanAvatar applies the strict AvatarPolicy.
func CleanAvatar(avatar string) (string, bool) {
	return AvatarPolicy{}.Clean(avatar)
}
