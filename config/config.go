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

package config

import (
	"fmt"
	"time"
)

const (
	// DefaultThreshold is the number of occurrences at which an IP is considered suspicious
	DefaultThreshold = 5
	// DefaultLogFile is the log file that gets analysed if none is configured
	DefaultLogFile = "sample_access.log"
	// DefaultDNSTimeout limits a single reverse lookup
	DefaultDNSTimeout = 2 * time.Second
	// DefaultLogLevel keeps diagnostics quiet unless something goes wrong
	DefaultLogLevel = "warning"
)

// Report orderings
const (
	OrderSeen  = "seen"
	OrderCount = "count"
	OrderIP    = "ip"
)

// Config contains all configurable bits and pieces the logids application needs
// The configuration gets passed on to all parts of the application that need to access it
type Config struct {
	Threshold     int
	LogFile       string
	LogFormat     string
	WhitelistTOML string
	Order         string
	DNSServer     string
	DNSTimeout    time.Duration
	LogLevel      string
}

// Default returns a Config with the default threshold and log file
func Default() Config {
	return Config{
		Threshold:  DefaultThreshold,
		LogFile:    DefaultLogFile,
		Order:      OrderSeen,
		DNSTimeout: DefaultDNSTimeout,
		LogLevel:   DefaultLogLevel,
	}
}

// Validate checks the configuration for values the pipeline can't work with
func (c *Config) Validate() error {
	if c.Threshold < 1 {
		return fmt.Errorf("threshold must be at least 1 but is %d", c.Threshold)
	}

	if c.LogFile == "" {
		return fmt.Errorf("no log file configured")
	}

	switch c.Order {
	case OrderSeen, OrderCount, OrderIP:
	case "":
		c.Order = OrderSeen
	default:
		return fmt.Errorf("unknown report order %q (use %s, %s or %s)", c.Order, OrderSeen, OrderCount, OrderIP)
	}

	if c.DNSServer != "" && c.DNSTimeout <= 0 {
		return fmt.Errorf("dns timeout must be positive but is %v", c.DNSTimeout)
	}

	return nil
}
