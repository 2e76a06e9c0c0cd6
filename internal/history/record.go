package history

import "time"

// Maximum column lengths, in characters.
const (
	MaxTitleLen     = 1000
	MaxHostLen      = 600
	MaxURLLen       = 3000
	MaxUserAgentLen = 3000
	MaxOriginLen    = 100
	MaxTagLen       = 100
)

// Record is a single browser history entry decoded from an export row.
type Record struct {
	Timestamp time.Time
	Title     string
	Host      string
	URL       string
	UserAgent string
	Origin    string
	Tags      []string
}

// Truncate cuts s down to at most n characters.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// OriginFor returns the origin label for a source file name.
func OriginFor(name string) string {
	return Truncate(name, MaxOriginLen)
}
