package media

import "strings"

// MaxImageSize is the largest accepted upload, in bytes.
const MaxImageSize int64 = 10 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// IsAllowedImageType reports whether contentType may be uploaded as a listing image.
func IsAllowedImageType(contentType string) bool {
	_, ok := imageExtensions[baseType(contentType)]
	return ok
}

// ExtensionFor returns the file extension stored for contentType.
func ExtensionFor(contentType string) string {
	return imageExtensions[baseType(contentType)]
}

// ObjectKey joins path segments into a storage key, dropping empty segments
// and stray slashes.
func ObjectKey(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, "/")
}

// Prefix is ObjectKey with a trailing slash, suitable for listing.
func Prefix(parts ...string) string {
	k := ObjectKey(parts...)
	if k == "" {
		return ""
	}
	return k + "/"
}

func baseType(contentType string) string {
	t, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(t)
}
