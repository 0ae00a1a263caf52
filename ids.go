/*
	logids - a log based intrusion detector by ScraperWall
	Copyright (C) 2021 ScraperWall, Tobias von Dewitz <tobias@scraperwall.com>

	This program is free software: you can redistribute it and/or modify it
	under the terms of the GNU Affero General Public License as published by
	the Free Software Foundation, either version 3 of the License, or (at your
	option) any later version.

	This program is distributed in the hope that it will be useful, but WITHOUT
	ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
	FITNESS FOR A PARTICULAR PURPOSE. See the GNU Affero General Public License
	for more details.

	You should have received a copy of the GNU Affero General Public License
	along with this program. If not, see <https://www.gnu.org/licenses/>.
*/

package logids

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
	"unicode/utf8"

	"github.com/bitfield/script"
	"github.com/dustin/go-humanize"
	"github.com/scraperwall/logids/config"
	"github.com/scraperwall/logids/data"
	log "github.com/sirupsen/logrus"
)

// ErrLogFileNotFound is returned by ReadLines when the log file doesn't exist
var ErrLogFileNotFound = errors.New("log file not found")

// ErrInvalidEncoding is returned by ReadLines when a line isn't valid UTF-8
var ErrInvalidEncoding = errors.New("invalid UTF-8")

// IDS detects suspicious addresses in a log file
type IDS struct {
	config    *config.Config
	extractor Extractor
	whitelist *Whitelist
	resolver  *Resolver
	out       io.Writer
	now       func() time.Time
}

// Option configures an IDS
type Option func(*IDS)

// WithOutput makes the IDS write its report to w instead of stdout
func WithOutput(w io.Writer) Option {
	return func(ids *IDS) {
		ids.out = w
	}
}

// WithClock replaces the clock that timestamps the report
func WithClock(now func() time.Time) Option {
	return func(ids *IDS) {
		ids.now = now
	}
}

// WithResolver enables reverse lookups of suspicious addresses
func WithResolver(r *Resolver) Option {
	return func(ids *IDS) {
		ids.resolver = r
	}
}

// New creates a new IDS instance
func New(config *config.Config, opts ...Option) (*IDS, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	ids := &IDS{
		config:    config,
		extractor: NewRegexpExtractor(),
		out:       os.Stdout,
		now:       time.Now,
	}

	if config.LogFormat != "" {
		log.Debugf("extracting addresses with log format %q", config.LogFormat)
		ids.extractor = NewFormatExtractor(config.LogFormat)
	}

	if config.WhitelistTOML != "" {
		wl, err := NewWhitelist(config.WhitelistTOML)
		if err != nil {
			return nil, fmt.Errorf("whitelist %s: %w", config.WhitelistTOML, err)
		}
		ids.whitelist = wl
	}

	if config.DNSServer != "" {
		ids.resolver = NewResolver(config.DNSServer, config.DNSTimeout)
	}

	for _, opt := range opts {
		opt(ids)
	}

	return ids, nil
}

// Run reads the configured log file, detects suspicious addresses and writes the report.
// A missing log file is reported on the output and is not an error
func (ids *IDS) Run(ctx context.Context) error {
	lines, err := ReadLines(ids.config.LogFile)
	if errors.Is(err, ErrLogFileNotFound) {
		_, err = fmt.Fprintf(ids.out, "Error: Log file '%s' not found.\n", ids.config.LogFile)
		return err
	}
	if err != nil {
		return err
	}

	suspicious, _ := ids.Analyze(lines)

	err = ReportEntries(ids.out, suspicious.Ordered(ids.config.Order), ids.now())
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if ids.resolver != nil {
		ids.resolve(ctx, suspicious)
	}

	return nil
}

// Analyze extracts, counts and filters the addresses in lines.
// It returns the suspicious addresses and a summary of the pass
func (ids *IDS) Analyze(lines []string) (*Frequencies, data.Summary) {
	ips := ExtractWith(lines, ids.extractor)
	freq := Count(ips)
	suspicious := freq.Suspicious(ids.config.Threshold)

	if ids.whitelist != nil {
		suspicious = suspicious.Without(func(ip string) bool {
			whitelisted, descr := ids.whitelist.IsWhitelisted(ip)
			if whitelisted {
				log.Infof("%s is whitelisted: %s", ip, descr)
			}
			return whitelisted
		})
	}

	summary := data.Summary{
		Lines:      len(lines),
		Extracted:  len(ips),
		Distinct:   freq.Size(),
		Suspicious: suspicious.Size(),
	}

	log.Infof("stats :: %s lines / %s addresses / %s distinct / %s suspicious (threshold %d)",
		humanize.Comma(int64(summary.Lines)),
		humanize.Comma(int64(summary.Extracted)),
		humanize.Comma(int64(summary.Distinct)),
		humanize.Comma(int64(summary.Suspicious)),
		ids.config.Threshold)

	return suspicious, summary
}

func (ids *IDS) resolve(ctx context.Context, suspicious *Frequencies) {
	entries := suspicious.Entries()
	addrs := make([]string, len(entries))
	for i, e := range entries {
		addrs[i] = e.IP
	}

	for _, rip := range ids.resolver.ResolveAll(ctx, addrs) {
		if rip.Err != "" {
			log.Warnf("failed to resolve %s: %s", rip.IP, rip.Err)
			continue
		}
		log.WithFields(log.Fields{
			"ip":   rip.IP,
			"host": rip.Host,
			"took": rip.Took,
		}).Info("suspicious address resolved")
	}
}

// ReadLines returns all lines of the file at path. The file is closed on every path.
// If the file doesn't exist the error is ErrLogFileNotFound, a line that isn't valid UTF-8
// fails with ErrInvalidEncoding
func ReadLines(path string) ([]string, error) {
	fh, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrLogFileNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	if fi, err := fh.Stat(); err == nil {
		log.Debugf("reading %s (%s)", path, humanize.Bytes(uint64(fi.Size())))
	}

	lines, err := script.NewPipe().WithReader(fh).Slice()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for i, l := range lines {
		if !utf8.ValidString(l) {
			return nil, fmt.Errorf("%s: %w on line %d", path, ErrInvalidEncoding, i+1)
		}
	}

	return lines, nil
}
