package harvest

import (
	"fmt"
	"net/url"
	"strings"
)

// Source tags recorded on every saved email, identifying which discovery
// path produced it.
const (
	SourceCrossrefWeb    = "CROSSREF_WEB"
	SourceCrossrefSocial = "CROSSREF_SOCIAL"
)

// strategy binds a URL type to its provenance tag and extraction behavior.
// The set is closed: adding a discovery source means adding a variant here,
// not scattering new string comparisons through the engine.
type strategy struct {
	tag     string
	extract func(page Page, target string) []string
}

func strategyFor(t URLType) (strategy, error) {
	switch t {
	case URLTypeWebsite:
		return strategy{
			tag: SourceCrossrefWeb,
			extract: func(page Page, _ string) []string {
				return ExtractEmails(page.HTML)
			},
		}, nil
	case URLTypeSocialProfile:
		return strategy{
			tag: SourceCrossrefSocial,
			extract: func(page Page, target string) []string {
				return ExcludeBrand(ExtractEmails(page.HTML), BrandToken(target))
			},
		}, nil
	default:
		return strategy{}, fmt.Errorf("unknown url type %q", t)
	}
}

// BrandToken derives the platform brand from a profile URL: the registrable
// label of the host, so "facebook" for m.facebook.com. Used to reject
// platform-generated addresses on social pages.
func BrandToken(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return host
	}
	return labels[len(labels)-2]
}
