// Package deeplink builds and parses the scheme URLs the harness uses to
// launch the application under test with a target page.
//
// The wire form is <scheme>://open?url=<percent-encoded-target>. Encoding
// must be exactly reversible: the application decodes the payload back to
// the original target URL, so a lossy round trip would navigate somewhere
// else entirely.
package deeplink

import (
	"fmt"
	"net/url"
)

// Host is the fixed authority of every deep link.
const Host = "open"

// Build constructs the activation URL that asks the application registered
// for scheme to open target.
func Build(scheme, target string) string {
	return scheme + "://" + Host + "?url=" + url.QueryEscape(target)
}

// Target extracts and decodes the target URL from a deep link produced by
// Build (or by any conforming sender).
func Target(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("deeplink: parse %q: %w", raw, err)
	}
	if u.Host != Host {
		return "", fmt.Errorf("deeplink: unexpected host %q in %q", u.Host, raw)
	}
	target := u.Query().Get("url")
	if target == "" {
		return "", fmt.Errorf("deeplink: missing url parameter in %q", raw)
	}
	return target, nil
}
