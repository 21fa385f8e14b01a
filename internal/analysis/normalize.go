package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnparseable means the response could not be parsed even after repair.
var ErrUnparseable = errors.New("model response is not a json object")

var (
	leadingFence  = regexp.MustCompile("(?i)^\\s*```(?:json)?[ \\t]*\\r?\\n?")
	trailingFence = regexp.MustCompile("\\r?\\n?[ \\t]*```\\s*$")
)

// Parse repairs common model formatting mistakes and decodes the result as a JSON
// object. The decoded structure is returned as is.
func Parse(raw string) (map[string]any, error) {
	repaired := Repair(raw)
	var parsed map[string]any
	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if parsed == nil {
		return nil, fmt.Errorf("%w: null", ErrUnparseable)
	}
	return parsed, nil
}

// Repair strips a markdown fence, quotes bare object keys, folds unquoted fragments
// that trail a string value into that value and drops trailing commas. Text inside
// string literals is never rewritten, so valid JSON passes through unchanged.
func Repair(raw string) string {
	s := stripFences(raw)
	out := make([]byte, 0, len(s)+16)

	var (
		inString      bool
		escaped       bool
		stringIsValue bool
		afterColon    bool
		lastSig       byte
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				lastSig = '"'
				if !stringIsValue {
					continue
				}
				if fragment, n := trailingFragment(s[i+1:]); n > 0 {
					out = out[:len(out)-1]
					out = append(out, ' ')
					out = append(out, strings.ReplaceAll(fragment, `\`, `\\`)...)
					out = append(out, '"')
					i += n
				}
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			stringIsValue = afterColon
			afterColon = false
			out = append(out, c)
			continue
		case c == ':':
			afterColon = true
		case c == ',':
			if next := nextSignificant(s[i+1:]); next == '}' || next == ']' {
				continue
			}
			afterColon = false
		case isSpace(c):
			out = append(out, c)
			continue
		case (lastSig == '{' || lastSig == ',') && isIdentStart(c):
			if key, n := bareKey(s[i:]); n > 0 {
				out = append(out, '"')
				out = append(out, key...)
				out = append(out, '"')
				i += len(key) - 1
				lastSig = '"'
				continue
			}
			afterColon = false
		default:
			afterColon = false
		}
		out = append(out, c)
		lastSig = c
	}
	return string(out)
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// bareKey reports an identifier at the start of s that is followed by a colon.
func bareKey(s string) (string, int) {
	end := 0
	for end < len(s) && isIdentPart(s[end]) {
		end++
	}
	if end == 0 {
		return "", 0
	}
	if nextSignificant(s[end:]) != ':' {
		return "", 0
	}
	return s[:end], end
}

// trailingFragment returns unquoted text that directly follows a closed string value,
// up to the next delimiter, along with the number of bytes it spans.
func trailingFragment(rest string) (string, int) {
	start := 0
	for start < len(rest) && (rest[start] == ' ' || rest[start] == '\t') {
		start++
	}
	if start >= len(rest) {
		return "", 0
	}
	switch rest[start] {
	case ',', '}', ']', ':', '"', '\n', '\r':
		return "", 0
	}
	end := start
	for end < len(rest) {
		switch rest[end] {
		case ',', '}', ']', '"', '\n', '\r':
			return strings.TrimRight(rest[start:end], " \t"), end
		}
		end++
	}
	return strings.TrimRight(rest[start:end], " \t"), end
}

func nextSignificant(s string) byte {
	for i := 0; i < len(s); i++ {
		if !isSpace(s[i]) {
			return s[i]
		}
	}
	return 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
