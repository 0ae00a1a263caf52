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
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	log "github.com/sirupsen/logrus"
)

// Resolver looks up the reverse hostnames of suspicious addresses
type Resolver struct {
	server string
	client *dns.Client
}

// IPResolv contains an IP address and its corresponding reverse hostname
type IPResolv struct {
	IP     string
	Host   string
	Err    string
	Took   time.Duration
	TStart time.Time
}

// NewResolver creates a Resolver that asks server (host:port) and gives up on a query after timeout
func NewResolver(server string, timeout time.Duration) *Resolver {
	return &Resolver{
		server: server,
		client: &dns.Client{
			Timeout: timeout,
		},
	}
}

// Lookup returns the PTR name of ip. If the server doesn't know one, ip itself is returned
func (r *Resolver) Lookup(ctx context.Context, ip string) (string, error) {
	addr := net.ParseIP(ip)
	if addr == nil || addr.To4() == nil {
		return "", fmt.Errorf("%s is not a valid IPv4 address", ip)
	}

	reverse, err := dns.ReverseAddr(addr.String())
	if err != nil {
		return "", err
	}

	p := new(dns.Msg)
	p.SetQuestion(reverse, dns.TypePTR)

	resp, _, err := r.client.ExchangeContext(ctx, p, r.server)
	if err != nil {
		return "", fmt.Errorf("dns exchange error for %s: %w", ip, err)
	}

	hostname := addr.String()
	for _, rr := range resp.Answer {
		if t, ok := rr.(*dns.PTR); ok {
			hostname = strings.TrimSuffix(t.Ptr, ".")
			break
		}
	}

	if hostname == addr.String() {
		log.Tracef("dns answer for %s has no PTR record. Using %s", ip, ip)
	}

	return hostname, nil
}

// ResolveAll looks up every address in ips one after the other.
// Failed lookups are reported in the Err field of their result
func (r *Resolver) ResolveAll(ctx context.Context, ips []string) []*IPResolv {
	res := make([]*IPResolv, 0, len(ips))

	for _, ip := range ips {
		if ctx.Err() != nil {
			break
		}

		rip := &IPResolv{
			IP:     ip,
			TStart: time.Now(),
		}

		host, err := r.Lookup(ctx, ip)
		if err != nil {
			rip.Err = err.Error()
		}
		rip.Host = host
		rip.Took = time.Since(rip.TStart)

		res = append(res, rip)
	}

	return res
}
