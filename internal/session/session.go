// Package session holds the authentication context shared read-only by all
// platform operations for the duration of one run.
package session

import (
	"fmt"
	"sort"
	"strings"
)

// Browser header values presented on every platform request. The platform
// rejects sessions whose headers do not look like a desktop browser.
const (
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptHeader   = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	acceptLanguage = "zh-CN,zh;q=0.9,en;q=0.8"
)

// Context is the immutable per-run bundle of cookies and request headers.
// Construct it once before a run; nothing mutates it afterwards.
type Context struct {
	cookies      map[string]string
	cookieHeader string
}

// New builds a Context from a cookie map. The cookie map is copied and
// repaired (see Repair); the caller's map is not retained.
func New(cookies map[string]string) (*Context, error) {
	if len(cookies) == 0 {
		return nil, fmt.Errorf("session requires at least one cookie")
	}
	copied := make(map[string]string, len(cookies))
	for name, value := range cookies {
		copied[name] = value
	}
	Repair(copied)

	names := make([]string, 0, len(copied))
	for name := range copied {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+copied[name])
	}

	return &Context{
		cookies:      copied,
		cookieHeader: strings.Join(parts, "; "),
	}, nil
}

// CookieHeader returns the assembled Cookie header value. Cookie names are
// emitted in sorted order so the header is deterministic.
func (c *Context) CookieHeader() string {
	return c.cookieHeader
}

// CookieNames lists the cookie names carried by the session, sorted.
func (c *Context) CookieNames() []string {
	names := make([]string, 0, len(c.cookies))
	for name := range c.cookies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Headers returns the fixed browser header set including the Cookie header.
// The returned map is a fresh copy on every call.
func (c *Context) Headers() map[string]string {
	return map[string]string{
		"User-Agent":                UserAgent,
		"Accept":                    acceptHeader,
		"Accept-Language":           acceptLanguage,
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
		"Cookie":                    c.cookieHeader,
	}
}
