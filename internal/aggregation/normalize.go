package aggregation

import (
	"strings"

	"github.com/grafana/regexp"
)

// Token placeholders substituted for variable fragments of a log
// message, per spec.md §4.4.
const (
	TokenTimestamp = "<TIMESTAMP>"
	TokenUUID      = "<UUID>"
	TokenIP        = "<IP>"
	TokenIPv6      = "<IPv6>"
	TokenHex       = "<HEX>"
	TokenURL       = "<URL>"
	TokenEmail     = "<EMAIL>"
	TokenPath      = "<PATH>"
	TokenNum       = "<NUM>"
)

var (
	timestampRe = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?\b`)
	uuidRe      = regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`)
	ipv4Re      = regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\.){3}(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)\b`)
	ipv6Re      = regexp.MustCompile(`\b(?:[0-9a-fA-F]{1,4}:){2,7}[0-9a-fA-F]{0,4}\b`)
	hexRunRe    = regexp.MustCompile(`\b(?:0[xX][0-9a-fA-F]+|[0-9a-fA-F]{6,})\b`)
	urlRe       = regexp.MustCompile(`\bhttps?://[^\s'"<>]+`)
	emailRe     = regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.-]+\b`)
	pathRe      = regexp.MustCompile(`(?:^|[\s(=])(/[\w.-]+(?:/[\w.-]+)+)`)
	floatRe     = regexp.MustCompile(`\b\d+\.\d+\b`)
	intRe       = regexp.MustCompile(`\b\d+\b`)
)

// Normalize replaces variable fragments of a log message with type
// tokens, in the fixed order spec.md §4.4 requires (innermost pattern
// applied first: timestamps, then UUIDs, IPv4, IPv6, hex, URLs,
// emails, paths, floats, integers). It is a pure function so it can be
// called identically by the storage layer at insert time and by tests
// (spec.md §9: native and pushdown evaluation must agree bit-for-bit,
// which holds trivially when there is one implementation).
func Normalize(message string) string {
	s := message
	s = timestampRe.ReplaceAllString(s, TokenTimestamp)
	s = uuidRe.ReplaceAllString(s, TokenUUID)
	s = ipv4Re.ReplaceAllString(s, TokenIP)
	s = ipv6Re.ReplaceAllString(s, TokenIPv6)
	s = replaceHexRuns(s)
	s = urlRe.ReplaceAllString(s, TokenURL)
	s = emailRe.ReplaceAllString(s, TokenEmail)
	s = pathRe.ReplaceAllStringFunc(s, func(m string) string {
		prefix := m[:len(m)-len(strings.TrimLeft(m, " \t(="))]
		return prefix + TokenPath
	})
	s = floatRe.ReplaceAllString(s, TokenNum)
	s = intRe.ReplaceAllString(s, TokenNum)
	return s
}

// replaceHexRuns replaces 0x-prefixed hex literals and bare hex runs of
// 6+ digits, but only when the run contains at least one a-f letter —
// otherwise a plain decimal integer like "123456" would be misclassified
// as hex. Go's RE2 engine has no lookahead to express that in the
// pattern itself.
func replaceHexRuns(s string) string {
	return hexRunRe.ReplaceAllStringFunc(s, func(m string) string {
		if strings.HasPrefix(m, "0x") || strings.HasPrefix(m, "0X") {
			return TokenHex
		}
		for _, c := range m {
			if (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
				return TokenHex
			}
		}
		return m
	})
}
