package seo

import "strings"

// NormalizeDomain reduces a URL or domain to its bare lower-cased host:
// scheme, "www." prefix, path and trailing slash are all stripped.
// "https://www.Example.com/pricing" becomes "example.com".
func NormalizeDomain(raw string) string {
	d := strings.TrimSpace(strings.ToLower(raw))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	return d
}

// IsPrimaryDomain reports whether the bare domain belongs to the configured
// first-party domain. Matching is by substring so subdomains count.
func IsPrimaryDomain(domain, primary string) bool {
	if primary == "" {
		return false
	}
	return strings.Contains(domain, strings.ToLower(primary))
}
