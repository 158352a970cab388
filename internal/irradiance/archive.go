package irradiance

import "time"

// ArchiveOptions configure the production source stack.
type ArchiveOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Retry             RetryPolicy
	CacheTTL          time.Duration
}

// NewArchive stacks a cache over retries over the Open-Meteo client.
func NewArchive(o ArchiveOptions) *Cached {
	return NewCached(NewRetrying(NewOpenMeteo(o.BaseURL, o.Timeout, o.RequestsPerSecond), o.Retry), o.CacheTTL)
}
