package models

// Platform identifies a supported professional link network.
type Platform string

// Supported platforms.
const (
	PlatformLinkedIn  Platform = "linkedin"
	PlatformInstagram Platform = "instagram"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{PlatformLinkedIn, PlatformInstagram}

// Label returns the human-readable platform name.
func (p Platform) Label() string {
	switch p {
	case PlatformLinkedIn:
		return "LinkedIn"
	case PlatformInstagram:
		return "Instagram"
	}
	return string(p)
}

// ParsePlatform converts a stored or user-supplied name into a Platform.
func ParsePlatform(s string) (Platform, bool) {
	switch Platform(s) {
	case PlatformLinkedIn, PlatformInstagram:
		return Platform(s), true
	}
	return "", false
}

// Profile holds the links a user has captured in the private conversation.
// An empty link means the user has not set it.
type Profile struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	LinkedIn    string `json:"linkedin,omitempty"`
	Instagram   string `json:"instagram,omitempty"`
}

// Link returns the stored link for a platform, or "" if absent.
func (p Profile) Link(platform Platform) string {
	switch platform {
	case PlatformLinkedIn:
		return p.LinkedIn
	case PlatformInstagram:
		return p.Instagram
	}
	return ""
}

// Has reports whether the profile contains a link for the platform.
func (p Profile) Has(platform Platform) bool {
	return p.Link(platform) != ""
}

// FirstMissing returns the first platform, in display order, with no link.
func (p Profile) FirstMissing() (Platform, bool) {
	for _, platform := range Platforms {
		if !p.Has(platform) {
			return platform, true
		}
	}
	return "", false
}

// Contribution records which of a user's links are shown in one group's chain.
type Contribution struct {
	LinkedIn  bool `json:"linkedin"`
	Instagram bool `json:"instagram"`
}

// Has reports whether the platform has been contributed.
func (c Contribution) Has(platform Platform) bool {
	switch platform {
	case PlatformLinkedIn:
		return c.LinkedIn
	case PlatformInstagram:
		return c.Instagram
	}
	return false
}

// With returns a copy of c with the platform flag set.
func (c Contribution) With(platform Platform) Contribution {
	switch platform {
	case PlatformLinkedIn:
		c.LinkedIn = true
	case PlatformInstagram:
		c.Instagram = true
	}
	return c
}

// Member is one row of a chain: a group member with their profile and the
// flags they have contributed to that group.
type Member struct {
	Profile      Profile
	Contribution Contribution
}

// VisibleLink returns the link shown for the platform in a chain, or "" if
// the member has not contributed it or no longer has it on file.
func (m Member) VisibleLink(platform Platform) string {
	if !m.Contribution.Has(platform) {
		return ""
	}
	return m.Profile.Link(platform)
}
