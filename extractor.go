package logids

import (
	"regexp"

	"github.com/satyrius/gonx"
	"github.com/scraperwall/logids/matchers"
	log "github.com/sirupsen/logrus"
)

// remoteAddrField is the nginx variable that holds the client address
const remoteAddrField = "remote_addr"

// Extractor finds the address a single log line refers to
type Extractor interface {
	Extract(line string) (ip string, ok bool)
}

// RegexpExtractor returns the first IPv4 looking token of a line
type RegexpExtractor struct {
	Pattern *regexp.Regexp
}

// NewRegexpExtractor creates a RegexpExtractor that uses the matchers.IPv4 pattern
func NewRegexpExtractor() *RegexpExtractor {
	return &RegexpExtractor{
		Pattern: matchers.IPv4,
	}
}

// Extract returns the leftmost match in line
func (e *RegexpExtractor) Extract(line string) (string, bool) {
	ip := e.Pattern.FindString(line)
	return ip, ip != ""
}

// FormatExtractor parses lines according to an nginx log_format and takes the address
// from the $remote_addr field
type FormatExtractor struct {
	parser *gonx.Parser
	field  string
}

// NewFormatExtractor creates a FormatExtractor for the given nginx log_format
func NewFormatExtractor(format string) *FormatExtractor {
	return &FormatExtractor{
		parser: gonx.NewParser(format),
		field:  remoteAddrField,
	}
}

// Extract parses line and returns the first IPv4 looking token of its remote address field.
// Lines that don't match the format are skipped
func (e *FormatExtractor) Extract(line string) (string, bool) {
	entry, err := e.parser.ParseString(line)
	if err != nil {
		log.Tracef("skipping line: %s", err)
		return "", false
	}

	remote, err := entry.Field(e.field)
	if err != nil || remote == "" {
		return "", false
	}

	// only use the first host in case there are multiple hosts in the field
	ip := matchers.IPv4.FindString(remote)
	return ip, ip != ""
}

// ExtractIPs returns the first IPv4 looking token of every line that contains one, in line order
func ExtractIPs(lines []string) []string {
	return ExtractWith(lines, NewRegexpExtractor())
}

// ExtractWith runs extractor over all lines and collects the addresses in line order
func ExtractWith(lines []string, extractor Extractor) []string {
	ips := make([]string, 0, len(lines))

	for _, l := range lines {
		if ip, ok := extractor.Extract(l); ok {
			ips = append(ips, ip)
		}
	}

	return ips
}
