package history

import "sort"

// DefaultTopDomains is how many domains the usage chart shows.
const DefaultTopDomains = 5

// TopDomains counts records per domain and returns the n most frequent,
// highest count first. Ties are broken by domain name so output is stable.
// Records without a domain are skipped.
func TopDomains(records []UsageRecord, n int) []DomainCount {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Domain == "" {
			continue
		}
		counts[r.Domain]++
	}

	out := make([]DomainCount, 0, len(counts))
	for d, c := range counts {
		out = append(out, DomainCount{Domain: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Domain < out[j].Domain
	})

	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
