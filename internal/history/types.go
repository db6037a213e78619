// Package history keeps the bounded log of URLs opened in popup windows.
package history

import "fmt"

// DefaultMaxRecords is the retention cap of the usage log.
const DefaultMaxRecords = 100

// DefaultKey is the storage slot holding the usage log.
const DefaultKey = "usageData"

// UsageRecord is one URL opened through the popup-window feature.
type UsageRecord struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
	Domain    string `json:"domain"`
}

// DomainCount pairs a domain with the number of records for it.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// ValidationError reports a URL that cannot be parsed as an absolute URL.
type ValidationError struct {
	URL    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid URL %q: %s", e.URL, e.Reason)
}
