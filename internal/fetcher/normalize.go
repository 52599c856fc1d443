package fetcher

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// leadingScheme matches a scheme at the very start of the input. A "://"
// later in the path or query belongs to the URL and is not a scheme.
var leadingScheme = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+.-]*)://`)

// Normalize turns user input into the absolute URL that is fetched.
// Input without a scheme gets "https://". Only http and https are accepted,
// the host must be present, and internationalized host names are converted
// to their ASCII form.
//
//	Normalize("example.com")         // "https://example.com"
//	Normalize("https://example.com") // "https://example.com"
func Normalize(raw string) (string, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return "", &ValidationError{Input: raw, Reason: "empty url"}
	}

	if scheme := leadingScheme.FindStringSubmatch(input); scheme == nil {
		input = "https://" + input
	} else if s := strings.ToLower(scheme[1]); s != "http" && s != "https" {
		return "", &ValidationError{Input: raw, Reason: "unsupported scheme"}
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", &ValidationError{Input: raw, Reason: err.Error()}
	}

	host := u.Hostname()
	if host == "" {
		return "", &ValidationError{Input: raw, Reason: "missing host"}
	}

	if net.ParseIP(host) == nil {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return "", &ValidationError{Input: raw, Reason: "invalid host: " + err.Error()}
		}
		if ascii != host {
			if port := u.Port(); port != "" {
				u.Host = net.JoinHostPort(ascii, port)
			} else {
				u.Host = ascii
			}
		}
	}

	return u.String(), nil
}
