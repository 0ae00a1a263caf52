package matchers

import "regexp"

var (
	// IPv4 matches four dot separated runs of digits. The octets aren't range checked
	IPv4 *regexp.Regexp
)

func init() {
	IPv4 = regexp.MustCompile(`[0-9]+\.[0-9]+\.[0-9]+\.[0-9]+`)
}
