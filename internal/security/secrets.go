// Package security redacts credentials from chunk text before it is
// written to disk.
package security

import (
	"regexp"
	"strings"
)

// Finding is one credential located in a document.
type Finding struct {
	Rule     string `json:"rule"`
	Line     int    `json:"line"`
	StartPos int    `json:"start_pos"` // byte offset within the line
	EndPos   int    `json:"end_pos"`
}

type rule struct {
	name    string
	pattern *regexp.Regexp
	// replacement is an Expand template applied to each match
	replacement string
}

var defaultRules = []rule{
	{
		name:        "api_key",
		pattern:     regexp.MustCompile(`(?i)(api[_-]?key|apikey|api_secret|access[_-]?token)\s*[=:]\s*["']([a-zA-Z0-9_\-]{20,})["']`),
		replacement: `${1} = "[REDACTED]"`,
	},
	{
		name:        "aws_access_key",
		pattern:     regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		replacement: "[REDACTED_AWS_KEY]",
	},
	{
		name:        "password",
		pattern:     regexp.MustCompile(`(?i)(password|passwd|pwd|secret)\s*[=:]\s*["']([^\s"']{8,})["']`),
		replacement: `${1} = "[REDACTED]"`,
	},
	{
		name:        "connection_string",
		pattern:     regexp.MustCompile(`(?i)((?:mongodb|postgres|postgresql|mysql|redis|amqp)://[^:/\s"']+:)[^@\s"']+(@[^\s"']+)`),
		replacement: "${1}[REDACTED]${2}",
	},
	{
		name:        "private_key",
		pattern:     regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`),
		replacement: "[REDACTED_PRIVATE_KEY]",
	},
	{
		name:        "jwt_token",
		pattern:     regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`),
		replacement: "[REDACTED_JWT]",
	},
}

var defaultPlaceholders = []string{
	"your-", "example", "placeholder", "xxx", "changeme",
	"todo", "fixme", "<", ">", "${", "{{",
}

// SecretDetector finds and masks credentials line by line. Lines that look
// like documentation placeholders are left alone.
type SecretDetector struct {
	rules        []rule
	placeholders []string
}

// NewSecretDetector creates a detector with the built-in rules.
func NewSecretDetector() *SecretDetector {
	return &SecretDetector{
		rules:        defaultRules,
		placeholders: defaultPlaceholders,
	}
}

// Scan reports every credential in text.
func (d *SecretDetector) Scan(text string) []Finding {
	var findings []Finding
	for i, line := range strings.Split(text, "\n") {
		if d.isPlaceholder(line) {
			continue
		}
		for _, r := range d.rules {
			for _, loc := range r.pattern.FindAllStringIndex(line, -1) {
				findings = append(findings, Finding{Rule: r.name, Line: i + 1, StartPos: loc[0], EndPos: loc[1]})
			}
		}
	}
	return findings
}

// Redact masks credentials in text and returns the masked text with the
// number of replacements made. Text without findings is returned unchanged.
func (d *SecretDetector) Redact(text string) (string, int) {
	lines := strings.Split(text, "\n")
	count := 0

	for i, line := range lines {
		if d.isPlaceholder(line) {
			continue
		}
		for _, r := range d.rules {
			n := len(r.pattern.FindAllStringIndex(line, -1))
			if n == 0 {
				continue
			}
			count += n
			line = r.pattern.ReplaceAllString(line, r.replacement)
		}
		lines[i] = line
	}

	if count == 0 {
		return text, 0
	}
	return strings.Join(lines, "\n"), count
}

// HasSecrets checks if text contains secrets.
func (d *SecretDetector) HasSecrets(text string) bool {
	return len(d.Scan(text)) > 0
}

func (d *SecretDetector) isPlaceholder(line string) bool {
	lower := strings.ToLower(line)
	for _, p := range d.placeholders {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
