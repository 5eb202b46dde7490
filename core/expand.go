package core

import (
	"sort"
	"strings"
)

// ExpandBlocklist derives the full set of domains to block from the raw
// blocklist. Every input domain is kept; base domains additionally get their
// cross-TLD counterpart (example.com <-> example.co.uk). The result is
// deduplicated case-insensitively, with the first-seen spelling preserved,
// and returned sorted.
func ExpandBlocklist(domains []string) []string {
	set := make(map[string]string, len(domains)*2)
	add := func(d string) {
		key := strings.ToLower(d)
		if _, ok := set[key]; !ok {
			set[key] = d
		}
	}

	for _, d := range domains {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		add(d)
		if alt, ok := altTLDVariant(d); ok {
			add(alt)
		}
	}

	out := make([]string, 0, len(set))
	for _, d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// altTLDVariant returns the cross-TLD counterpart of a base domain: a
// two-label domain maps to its .co.uk form and a name.co.uk domain maps to
// name.com. A literal "www." prefix is carried over to the variant.
// Subdomains and single-label inputs have no counterpart.
func altTLDVariant(domain string) (string, bool) {
	prefix := ""
	rest := domain
	if len(rest) > len("www.") && strings.EqualFold(rest[:len("www.")], "www.") {
		prefix = rest[:len("www.")]
		rest = rest[len("www."):]
	}

	labels := strings.Split(rest, ".")
	for _, l := range labels {
		if l == "" {
			return "", false
		}
	}

	switch {
	case len(labels) == 2:
		return prefix + labels[0] + ".co.uk", true
	case len(labels) == 3 && strings.EqualFold(labels[1], "co") && strings.EqualFold(labels[2], "uk"):
		return prefix + labels[0] + ".com", true
	}
	return "", false
}
