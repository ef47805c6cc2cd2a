package filepicker

import (
	"mime"
	"strings"
)

// Accept maps a MIME type to the file extensions that also identify it.
type Accept struct {
	MIME       string
	Extensions []string
}

// AcceptRule lists the file types a Zone allows, in display order.
type AcceptRule []Accept

// Allows reports whether a file with the given name and declared MIME type
// is permitted. A file passes if its MIME type matches an entry, either
// exactly or through a "type/*" wildcard, or if its name ends in one of the
// listed extensions. An empty rule allows everything.
func (r AcceptRule) Allows(name, mimeType string) bool {
	if len(r) == 0 {
		return true
	}
	mimeType = normalizeMIME(mimeType)
	lowerName := strings.ToLower(name)
	for _, a := range r {
		if mimeMatches(normalizeMIME(a.MIME), mimeType) {
			return true
		}
		for _, ext := range a.Extensions {
			if ext != "" && strings.HasSuffix(lowerName, strings.ToLower(ext)) {
				return true
			}
		}
	}
	return false
}

// MIMEs returns the MIME types in the rule, in order.
func (r AcceptRule) MIMEs() []string {
	mimes := make([]string, 0, len(r))
	for _, a := range r {
		mimes = append(mimes, a.MIME)
	}
	return mimes
}

// InputAccept returns the value for a file input's accept attribute.
func (r AcceptRule) InputAccept() string {
	var parts []string
	for _, a := range r {
		parts = append(parts, a.MIME)
		parts = append(parts, a.Extensions...)
	}
	return strings.Join(parts, ",")
}

// Labels returns short, upper-case names for the accepted types, such as
// "PDF", taken from each entry's first extension.
func (r AcceptRule) Labels() []string {
	labels := make([]string, 0, len(r))
	for _, a := range r {
		label := a.MIME
		if len(a.Extensions) > 0 {
			label = strings.ToUpper(strings.TrimPrefix(a.Extensions[0], "."))
		}
		labels = append(labels, label)
	}
	return labels
}

func normalizeMIME(s string) string {
	if s == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func mimeMatches(pattern, mimeType string) bool {
	if pattern == "" || mimeType == "" {
		return false
	}
	if strings.HasSuffix(pattern, "/*") {
		return strings.HasPrefix(mimeType, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == mimeType
}
