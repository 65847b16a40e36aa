// Package domain maps URLs to registrable domains (eTLD+1).
package domain

import (
	"net"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hdrscope/hdrscope/internal/observation"
	"golang.org/x/net/publicsuffix"
)

const DefaultCacheSize = 4096

type Resolver struct {
	cache *lru.Cache[string, string]
}

func NewResolver(size int) (*Resolver, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Resolver{cache: c}, nil
}

// Registrable returns the public-suffix-aware registrable domain of rawURL,
// or observation.InvalidDomain when none can be derived. Bare host names
// are accepted. IP literals resolve to themselves.
func (r *Resolver) Registrable(rawURL string) string {
	host := hostOf(rawURL)
	if host == "" {
		return observation.InvalidDomain
	}
	if d, ok := r.cache.Get(host); ok {
		return d
	}
	d := registrable(host)
	r.cache.Add(host, d)
	return d
}

func (r *Resolver) Len() int {
	return r.cache.Len()
}

// registrable uses only the ICANN section of the public suffix list, so
// hosts under a private suffix such as github.io share its parent domain.
// Hosts under an unlisted TLD fall back to the list's default rule.
func registrable(host string) string {
	if net.ParseIP(host) != nil {
		return host
	}

	labels := strings.Split(host, ".")
	for _, l := range labels {
		if l == "" {
			return observation.InvalidDomain
		}
	}
	for i := range labels {
		suffix := strings.Join(labels[i:], ".")
		if ps, icann := publicsuffix.PublicSuffix(suffix); icann && ps == suffix {
			if i == 0 {
				return observation.InvalidDomain
			}
			return strings.Join(labels[i-1:], ".")
		}
	}

	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return observation.InvalidDomain
	}
	return d
}

func hostOf(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "//" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
}

// SiteName is the folder name used for a site's results: the URL's host
// and port with ':' replaced by '_'.
func SiteName(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return observation.InvalidDomain
	}
	return strings.ReplaceAll(u.Host, ":", "_")
}
