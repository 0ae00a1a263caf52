package logids

import (
	"fmt"
	"io/ioutil"
	"net"
	"os"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml"
	log "github.com/sirupsen/logrus"
)

// Whitelist contains trusted addresses that are never reported as suspicious
type Whitelist struct {
	path  string
	rules WhitelistRules
	cidrs []CIDRWhitelistRule
}

// WhitelistRules contains the Whitelist configuration
type WhitelistRules struct {
	IP   []WhitelistRule
	CIDR []WhitelistRule
}

// WhitelistRule represents a single Whitelist rule
type WhitelistRule struct {
	Pattern     string
	Description string
	Regexp      *regexp.Regexp `toml:"-"`
}

// CIDRWhitelistRule is a CIDR whitelist rule
type CIDRWhitelistRule struct {
	Network     *net.IPNet
	Description string
}

// NewWhitelist creates a new whitelist from the TOML rules file at path
func NewWhitelist(path string) (*Whitelist, error) {
	wl := &Whitelist{
		path:  path,
		cidrs: make([]CIDRWhitelistRule, 0),
	}

	if err := wl.Load(); err != nil {
		return nil, err
	}

	return wl, nil
}

// Load retrieves all whitelist rules from the configuration file
func (wl *Whitelist) Load() error {
	var rules WhitelistRules

	fh, err := os.Open(wl.path)
	if err != nil {
		return err
	}
	defer fh.Close()

	configBytes, err := ioutil.ReadAll(fh)
	if err != nil {
		return err
	}

	err = toml.Unmarshal(configBytes, &rules)
	if err != nil {
		return err
	}

	// IPs
	for i, r := range rules.IP {
		rules.IP[i].Regexp, err = regexp.Compile(fmt.Sprintf("^%s$", r.Pattern))
		if err != nil {
			return fmt.Errorf("can't parse whitelist IP regexp %s (%s): %s", r.Pattern, r.Description, err)
		}
	}

	// CIDR
	cidrRules := make([]CIDRWhitelistRule, len(rules.CIDR))
	for i, r := range rules.CIDR {
		cidr := strings.TrimSpace(strings.Replace(r.Pattern, `\`, "", -1))
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			return fmt.Errorf("can't parse whitelist CIDR %s (%s): %s", r.Pattern, r.Description, err)
		}

		cidrRules[i] = CIDRWhitelistRule{
			Network:     network,
			Description: r.Description,
		}
	}

	wl.rules = rules
	wl.cidrs = cidrRules

	log.Infof("%d IP and %d CIDR whitelist rules loaded from %s", len(rules.IP), len(cidrRules), wl.path)
	return nil
}

// IsWhitelisted determines whether ip is whitelisted. The method returns whether
// the IP is whitelisted and the description of the rule that matched
func (wl *Whitelist) IsWhitelisted(ip string) (whitelisted bool, description string) {
	// extracted addresses aren't validated, so ParseIP may well fail
	if parsed := net.ParseIP(ip); parsed != nil {
		for _, r := range wl.cidrs {
			if r.Network.Contains(parsed) {
				return true, r.Description
			}
		}
	}

	for _, r := range wl.rules.IP {
		if r.Regexp.MatchString(ip) {
			return true, r.Description
		}
	}

	return false, ""
}

// Len returns the number of rules in the whitelist
func (wl *Whitelist) Len() int {
	return len(wl.rules.IP) + len(wl.cidrs)
}
