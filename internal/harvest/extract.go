package harvest

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// emailPattern over-matches on purpose: it captures every email-shaped token
// and leaves the authoritative filtering to validEmail. Only tokens passing
// both survive.
var emailPattern = regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`)

// ExtractEmails scans both the raw markup and the rendered text of a page
// for contact emails. Some addresses appear only in the visible text, others
// only in attributes such as mailto: hrefs, so the two scans are unioned
// before validation. The result is lowercased, deduplicated and sorted;
// empty is a valid outcome.
func ExtractEmails(html string) []string {
	seen := make(map[string]struct{})
	collect := func(input string) {
		for _, match := range emailPattern.FindAllString(input, -1) {
			email := strings.ToLower(strings.TrimSpace(match))
			if !validEmail(email) {
				continue
			}
			seen[email] = struct{}{}
		}
	}

	collect(html)
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		collect(doc.Text())
	}

	emails := make([]string, 0, len(seen))
	for email := range seen {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	return emails
}

// ExcludeBrand drops emails containing the given brand token. Social
// platforms embed their own addresses (sharing widgets, noreply senders) in
// every profile page; anything mentioning the platform itself is noise.
func ExcludeBrand(emails []string, brand string) []string {
	brand = strings.ToLower(strings.TrimSpace(brand))
	if brand == "" {
		return emails
	}
	kept := emails[:0:0]
	for _, email := range emails {
		if strings.Contains(email, brand) {
			continue
		}
		kept = append(kept, email)
	}
	return kept
}

// validEmail applies the structural check that the permissive regex skips:
// a single @, a non-empty local part, and a syntactically valid dot
// separated domain ending in an alphabetic TLD of at least two letters.
func validEmail(email string) bool {
	at := strings.Count(email, "@")
	if at != 1 {
		return false
	}
	parts := strings.SplitN(email, "@", 2)
	local, domain := parts[0], parts[1]
	if local == "" || domain == "" {
		return false
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return false
	}
	for _, r := range local {
		if !isLocalChar(r) {
			return false
		}
	}
	return validDomain(domain)
}

func validDomain(domain string) bool {
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" {
			return false
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
		for _, r := range label {
			if !isDomainChar(r) {
				return false
			}
		}
	}
	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return false
	}
	for _, r := range tld {
		if !isAlpha(r) {
			return false
		}
	}
	return true
}

func isLocalChar(r rune) bool {
	return isAlpha(r) || isDigit(r) || strings.ContainsRune("._%+-", r)
}

func isDomainChar(r rune) bool {
	return isAlpha(r) || isDigit(r) || r == '-'
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
