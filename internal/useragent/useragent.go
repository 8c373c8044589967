// Package useragent supplies the fetcher's per-attempt user-agent draw:
// a weighted random pick over one pool of desktop and mobile user agents
// (each entry's class is not used by the draw), plus
// the browser-shaped header set the spec requires alongside it.
package useragent

import (
	"math/rand"
	"strings"
)

// Class is a request-class bucket a user agent belongs to.
type Class string

const (
	ClassDesktop Class = "desktop"
	ClassMobile  Class = "mobile"
	ClassAll     Class = "all"
)

// entry pairs a concrete UA string with the class weight it draws from.
type entry struct {
	ua     string
	weight int
}

// Pool draws a weighted-random user agent per fetch attempt.
type Pool struct {
	entries []entry
	total   int
}

// Default returns the pool used in production: desktop browsers weighted
// heaviest, a smaller mobile share, chosen to look like organic traffic.
func Default() *Pool {
	return New([]struct {
		UA     string
		Class  Class
		Weight int
	}{
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36", ClassDesktop, 30},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15", ClassDesktop, 20},
		{"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36", ClassDesktop, 15},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0", ClassDesktop, 15},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1", ClassMobile, 12},
		{"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Mobile Safari/537.36", ClassMobile, 8},
	})
}

// New builds a pool from the given weighted entries.
func New(defs []struct {
	UA     string
	Class  Class
	Weight int
}) *Pool {
	p := &Pool{}
	for _, d := range defs {
		p.entries = append(p.entries, entry{ua: d.UA, weight: d.Weight})
		p.total += d.Weight
	}
	return p
}

// Pick draws one user-agent string by weighted random selection.
func (p *Pool) Pick() string {
	if p.total <= 0 || len(p.entries) == 0 {
		return "Mozilla/5.0 (compatible; ContentRadarBot/1.0)"
	}
	r := rand.Intn(p.total)
	for _, e := range p.entries {
		if r < e.weight {
			return e.ua
		}
		r -= e.weight
	}
	return p.entries[len(p.entries)-1].ua
}

// BrowserHeaders returns the browser-shaped header set the spec requires
// alongside the chosen user agent: Accept/Accept-Language/Accept-Encoding,
// keep-alive, upgrade-insecure-requests, and for Chrome/Edge-shaped UAs a
// minimal Sec-Ch-Ua set.
func BrowserHeaders(ua string) map[string]string {
	h := map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language":          "en-US,en;q=0.9",
		"Accept-Encoding":          "gzip, deflate, br",
		"Connection":               "keep-alive",
		"Upgrade-Insecure-Requests": "1",
	}
	if isChromeShaped(ua) {
		h["Sec-Ch-Ua"] = `"Chromium";v="124", "Google Chrome";v="124", "Not-A.Brand";v="99"`
		h["Sec-Ch-Ua-Mobile"] = "?0"
		h["Sec-Ch-Ua-Platform"] = `"Windows"`
	}
	return h
}

func isChromeShaped(ua string) bool {
	return strings.Contains(ua, "Chrome/") || strings.Contains(ua, "Edg/")
}
