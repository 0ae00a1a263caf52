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
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/scraperwall/logids/data"
)

const (
	reportHeader    = "=== Simple IDS Security Report ==="
	reportSeparator = "----------------------------------"
	reportNothing   = "No suspicious activity detected."

	// GeneratedAtLayout is the time layout of the "Generated at" line
	GeneratedAtLayout = "2006-01-02 15:04:05.000000"
)

// Report writes the security report for the suspicious addresses to w, in first seen order
func Report(w io.Writer, suspicious *Frequencies, generatedAt time.Time) error {
	return ReportEntries(w, suspicious.Entries(), generatedAt)
}

// ReportEntries writes the security report for entries to w in the order given
func ReportEntries(w io.Writer, entries []data.Entry, generatedAt time.Time) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, reportHeader)
	fmt.Fprintln(bw, "Generated at:", generatedAt.Format(GeneratedAtLayout))
	fmt.Fprintln(bw, reportSeparator)

	if len(entries) == 0 {
		fmt.Fprintln(bw, reportNothing)
	}

	for _, e := range entries {
		fmt.Fprintf(bw, "⚠ Suspicious IP: %s | Access count: %d\n", e.IP, e.Count)
	}

	return bw.Flush()
}
