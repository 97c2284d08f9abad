package validation

import (
	"net/url"
	"regexp"
	"strings"

	"linkchain/internal/models"
)

// InstagramProfileBase is the canonical prefix used to normalize @handles.
const InstagramProfileBase = "https://www.instagram.com/"

// Format hints shown to users whose input was rejected.
const (
	LinkedInFormatHint  = "Send your LinkedIn profile link, e.g. https://www.linkedin.com/in/your-name"
	InstagramFormatHint = "Send your Instagram profile link, e.g. https://www.instagram.com/your.name, or just @your.name"
)

var (
	// linkedInPathPattern requires a profile, public profile or company path.
	linkedInPathPattern = regexp.MustCompile(`^/(in|pub|company)/[^/]+`)

	// instagramPathPattern requires a non-empty first path segment.
	instagramPathPattern = regexp.MustCompile(`^/[A-Za-z0-9._]+/?$`)

	// InstagramHandlePattern matches the @handle shorthand.
	InstagramHandlePattern = regexp.MustCompile(`^@([A-Za-z0-9._]{1,30})$`)
)

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// ValidateLinkedIn accepts a LinkedIn profile URL and returns it trimmed but
// otherwise exactly as given. A link pasted without a scheme gets https://.
func ValidateLinkedIn(raw string) (string, bool, string) {
	value := strings.TrimSpace(raw)
	if !isSingleToken(value) {
		return "", false, LinkedInFormatHint
	}
	value = withScheme(value)

	u, ok := parseHTTPURL(value)
	if !ok || !hostMatches(u.Hostname(), "linkedin.com") {
		return "", false, LinkedInFormatHint
	}

	if !linkedInPathPattern.MatchString(u.EscapedPath()) {
		return "", false, "That doesn't look like a profile link. It should contain /in/, /pub/ or /company/. " + LinkedInFormatHint
	}

	return value, true, ""
}

// ValidateInstagram accepts an Instagram profile URL or an @handle. Handles
// are normalized to a full profile URL; URLs are returned trimmed, with
// https:// added when the scheme is missing.
func ValidateInstagram(raw string) (string, bool, string) {
	value := strings.TrimSpace(raw)
	if !isSingleToken(value) {
		return "", false, InstagramFormatHint
	}

	if m := InstagramHandlePattern.FindStringSubmatch(value); m != nil {
		return InstagramProfileBase + m[1], true, ""
	}
	value = withScheme(value)

	u, ok := parseHTTPURL(value)
	if !ok || !hostMatches(u.Hostname(), "instagram.com") {
		return "", false, InstagramFormatHint
	}

	if !instagramPathPattern.MatchString(u.EscapedPath()) {
		return "", false, "That link has no profile name in it. " + InstagramFormatHint
	}

	return value, true, ""
}

// ValidateLink dispatches to the platform's validator.
func ValidateLink(platform models.Platform, raw string) (string, bool, string) {
	switch platform {
	case models.PlatformLinkedIn:
		return ValidateLinkedIn(raw)
	case models.PlatformInstagram:
		return ValidateInstagram(raw)
	}
	return "", false, "Unsupported platform"
}

// FormatHint returns the expected input format for a platform.
func FormatHint(platform models.Platform) string {
	if platform == models.PlatformInstagram {
		return InstagramFormatHint
	}
	return LinkedInFormatHint
}

// DetectLink recognizes a full profile URL for any supported platform.
// Shorthand handles are not detected because they are ambiguous without a
// pending capture.
func DetectLink(raw string) (models.Platform, string, bool) {
	if strings.HasPrefix(strings.TrimSpace(raw), "@") {
		return "", "", false
	}
	for _, platform := range models.Platforms {
		if value, ok, _ := ValidateLink(platform, raw); ok {
			return platform, value, true
		}
	}
	return "", "", false
}

// withScheme prefixes https:// to links pasted as "www.linkedin.com/in/x".
// Values that already name a scheme are left for ValidateURL to judge.
func withScheme(value string) string {
	if strings.Contains(value, "://") {
		return value
	}
	return "https://" + value
}

func parseHTTPURL(value string) (*url.URL, bool) {
	if valid, _ := ValidateURL(value); !valid {
		return nil, false
	}
	u, err := url.Parse(value)
	if err != nil {
		return nil, false
	}
	return u, true
}

func hostMatches(host, domain string) bool {
	host = strings.ToLower(host)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func isSingleToken(value string) bool {
	return value != "" && !strings.ContainsAny(value, " \t\r\n")
}
