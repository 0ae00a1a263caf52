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

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/namsral/flag"
	"github.com/scraperwall/logids"
	"github.com/scraperwall/logids/config"
	log "github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	config := config.Default()

	fs := flag.NewFlagSetWithEnvPrefix("logids", "LOGIDS", flag.ContinueOnError)
	fs.String(flag.DefaultConfigFlagname, "", "read flags from this file")
	fs.IntVar(&config.Threshold, "threshold", config.Threshold, "report addresses seen at least this many times")
	fs.StringVar(&config.LogFile, "logfile", config.LogFile, "the log file to analyse")
	fs.StringVar(&config.LogFormat, "log-format", "", "nginx log_format of the log file. Empty: use the first IPv4 address of each line")
	fs.StringVar(&config.WhitelistTOML, "whitelist", "", "TOML file with whitelisted IPs and CIDRs")
	fs.StringVar(&config.Order, "order", config.Order, "report order: seen, count or ip")
	fs.StringVar(&config.DNSServer, "dns-server", "", "resolve suspicious addresses with this DNS server, e.g. 8.8.8.8:53")
	fs.DurationVar(&config.DNSTimeout, "dns-timeout", config.DNSTimeout, "timeout of a single reverse lookup")
	fs.StringVar(&config.LogLevel, "loglevel", config.LogLevel, "the log level")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		log.Error(err)
		return 2
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	ids, err := logids.New(&config)
	if err != nil {
		log.Error(err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ids.Run(ctx); err != nil {
		log.Fatal(err)
	}

	return 0
}
