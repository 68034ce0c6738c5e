package rule

import (
	"bytes"
)

// The helpers in this file exist so block-level rewrites never reach
// for a greedy "match up to the next closing brace" pattern: such a
// pattern silently spans nested blocks. Everything here is depth and
// context aware instead.

// 🔎 BalancedSpan returns the offset one past the brace closing the
// opening brace at open. Braces inside string literals, template
// literals, and comments do not count toward nesting depth. ok is
// false when content[open] is not '{' or the block never closes.
func BalancedSpan(content []byte, open int) (end int, ok bool) {
	if open < 0 || open >= len(content) || content[open] != '{' {
		return 0, false
	}

	depth := 0
	var inString byte // active quote character, 0 if none
	inLineComment := false
	inBlockComment := false

	for i := open; i < len(content); i++ {
		c := content[i]

		switch {
		case inLineComment:
			if c == '\n' {
				inLineComment = false
			}
		case inBlockComment:
			if c == '*' && i+1 < len(content) && content[i+1] == '/' {
				inBlockComment = false
				i++
			}
		case inString != 0:
			if c == '\\' {
				i++ // skip escaped character
			} else if c == inString {
				inString = 0
			}
		default:
			switch c {
			case '\'', '"', '`':
				inString = c
			case '/':
				if i+1 < len(content) {
					switch content[i+1] {
					case '/':
						inLineComment = true
						i++
					case '*':
						inBlockComment = true
						i++
					}
				}
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return i + 1, true
				}
			}
		}
	}
	return 0, false
}

// LineSpan returns the bounds of the line containing offset. end points
// one past the trailing newline, or to len(content) on the last line.
func LineSpan(content []byte, offset int) (start, end int) {
	if offset > len(content) {
		offset = len(content)
	}
	start = offset
	for start > 0 && content[start-1] != '\n' {
		start--
	}
	end = offset
	for end < len(content) && content[end] != '\n' {
		end++
	}
	if end < len(content) {
		end++ // include the newline
	}
	return start, end
}

// ImportInsertOffset returns the offset where a new import line should
// be inserted: immediately after the last existing top-of-file import
// line, or 0 when the file has none.
func ImportInsertOffset(content []byte) int {
	offset := 0
	pos := 0
	for pos < len(content) {
		lineEnd := pos
		for lineEnd < len(content) && content[lineEnd] != '\n' {
			lineEnd++
		}
		line := bytes.TrimSpace(content[pos:lineEnd])
		if bytes.HasPrefix(line, []byte("import ")) || bytes.HasPrefix(line, []byte("import{")) {
			if lineEnd < len(content) {
				offset = lineEnd + 1
			} else {
				offset = lineEnd
			}
		}
		if lineEnd >= len(content) {
			break
		}
		pos = lineEnd + 1
	}
	return offset
}

// isIdentByte matches the identifier alphabet of the target sources.
func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// IdentifierUsed reports whether name occurs in content as a whole
// identifier (not as a substring of a longer one).
func IdentifierUsed(content []byte, name string) bool {
	return identifierCount(content, name, 0, len(content)) > 0
}

// IdentifierUsedIn reports whole-identifier occurrence inside [start,end).
func IdentifierUsedIn(content []byte, name string, start, end int) bool {
	return identifierCount(content, name, start, end) > 0
}

func identifierCount(content []byte, name string, start, end int) int {
	if name == "" || start < 0 || end > len(content) {
		return 0
	}
	needle := []byte(name)
	count := 0
	for i := start; i+len(needle) <= end; {
		j := bytes.Index(content[i:end], needle)
		if j < 0 {
			break
		}
		at := i + j
		before := at == 0 || !isIdentByte(content[at-1])
		afterIdx := at + len(needle)
		after := afterIdx >= len(content) || !isIdentByte(content[afterIdx])
		if before && after {
			count++
		}
		i = at + len(needle)
	}
	return count
}
