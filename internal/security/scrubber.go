// Package security keeps API credentials out of logs and diagnostics.
package security

import (
	"regexp"
	"strings"
)

const redacted = "***REDACTED***"

type rule struct {
	pattern *regexp.Regexp
	replace func(match []string) string
}

// The Google API client appends the API key to every request URL, and
// googleapi errors quote that URL verbatim.
var defaultRules = []rule{
	{
		pattern: regexp.MustCompile(`([?&]key=)([^&\s"']+)`),
		replace: func(m []string) string { return m[1] + redacted },
	},
	{
		pattern: regexp.MustCompile(`(?i)(api[_-]?key|x-goog-api-key)(\s*[:=]\s*)["']?([A-Za-z0-9_\-./+=]{20,})["']?`),
		replace: func(m []string) string { return m[1] + m[2] + redacted },
	},
	{
		pattern: regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`),
		replace: func(m []string) string { return "AIza" + redacted },
	},
	{
		pattern: regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-./+=]{20,}`),
		replace: func(m []string) string { return "Bearer " + redacted },
	},
}

// Scrubber removes credentials from strings before they are printed.
type Scrubber struct {
	rules   []rule
	secrets []string
}

// NewScrubber creates a Scrubber with the default Google credential rules.
func NewScrubber() *Scrubber {
	return &Scrubber{rules: defaultRules}
}

// AddSecret registers a literal value, such as a resolved API key, that
// must never appear in output. Values shorter than 8 characters are ignored.
func (s *Scrubber) AddSecret(secret string) {
	secret = strings.TrimSpace(secret)
	if len(secret) < 8 {
		return
	}
	s.secrets = append(s.secrets, secret)
}

// Scrub returns input with every known secret and credential pattern redacted.
func (s *Scrubber) Scrub(input string) string {
	scrubbed := input
	for _, secret := range s.secrets {
		scrubbed = strings.ReplaceAll(scrubbed, secret, redacted)
	}

	for _, r := range s.rules {
		r := r
		scrubbed = r.pattern.ReplaceAllStringFunc(scrubbed, func(match string) string {
			return r.replace(r.pattern.FindStringSubmatch(match))
		})
	}
	return scrubbed
}

// ScrubError is Scrub applied to err.Error(). A nil error yields "".
func (s *Scrubber) ScrubError(err error) string {
	if err == nil {
		return ""
	}
	return s.Scrub(err.Error())
}
