// Package security validates externally supplied endpoints before the
// broker hands them to the engine.
package security

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Errors returned by ValidateCDPEndpoint.
var (
	ErrEmptyEndpoint   = errors.New("cdp endpoint is empty")
	ErrInvalidEndpoint = errors.New("cdp endpoint is not a valid URL")
	ErrBlockedScheme   = errors.New("cdp endpoint scheme not allowed")
	ErrEmptyHost       = errors.New("cdp endpoint has no host")
	ErrInvalidIDN      = errors.New("cdp endpoint host is not a valid domain name")
)

// allowedCDPSchemes are the schemes the engine's ConnectOverCDP will
// actually dial: a raw websocket endpoint, or the HTTP endpoint the
// engine resolves to one via /json/version.
var allowedCDPSchemes = map[string]bool{
	"ws":    true,
	"wss":   true,
	"http":  true,
	"https": true,
}

// idnaProfile rejects hostnames that fail strict ASCII/IDNA 2008
// conversion, catching homograph lookalikes before they reach the
// engine.
var idnaProfile = idna.New(
	idna.ValidateLabels(true),
	idna.VerifyDNSLength(true),
	idna.StrictDomainName(true),
)

// ValidateCDPEndpoint checks a config-supplied connect-over-CDP
// endpoint before it is dialed. Unlike page-navigation URL validation,
// it does not block private or loopback addresses: a CDP endpoint
// pointing at 127.0.0.1 or a private network address is the ordinary
// case (the engine talking to a browser's own debugging port on the
// same host or LAN), not an attack. What it does reject is the class
// of input that has no legitimate reason to appear in this field: a
// non-CDP scheme, a missing host, or a hostname that fails strict IDN
// validation.
func ValidateCDPEndpoint(raw string) error {
	if raw == "" {
		return ErrEmptyEndpoint
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !allowedCDPSchemes[scheme] {
		return fmt.Errorf("%w: %q", ErrBlockedScheme, parsed.Scheme)
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return ErrEmptyHost
	}

	if err := validateIDNHostname(hostname); err != nil {
		return err
	}

	return nil
}

// validateIDNHostname is a no-op for pure-ASCII hosts (including raw
// IP literals, which ToASCII passes through unchanged) and otherwise
// requires the hostname to survive strict IDNA conversion.
func validateIDNHostname(hostname string) error {
	for i := 0; i < len(hostname); i++ {
		if hostname[i] > 127 {
			if _, err := idnaProfile.ToASCII(hostname); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidIDN, err)
			}
			return nil
		}
	}
	return nil
}
