package prompt

import "strings"

// FormatPartial substitutes {name} placeholders in content with values from
// vars, following Python str.format conventions for brace escaping ({{ and }}
// render as literal braces). Placeholders with no matching key are left
// literal in the output and reported in missing, so a template referencing an
// unbound variable degrades to a visible placeholder instead of failing the
// whole generation request.
func FormatPartial(content string, vars map[string]string) (formatted string, missing []string) {
	var b strings.Builder
	b.Grow(len(content))

	seen := make(map[string]bool)

	for i := 0; i < len(content); {
		c := content[i]
		switch c {
		case '{':
			if i+1 < len(content) && content[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(content[i:], '}')
			if end < 0 {
				// Unterminated brace: keep as-is.
				b.WriteString(content[i:])
				return b.String(), missing
			}
			name := content[i+1 : i+end]
			if !isPlaceholderName(name) {
				b.WriteString(content[i : i+end+1])
				i += end + 1
				continue
			}
			if val, ok := vars[name]; ok {
				b.WriteString(val)
			} else {
				b.WriteString(content[i : i+end+1])
				if !seen[name] {
					seen[name] = true
					missing = append(missing, name)
				}
			}
			i += end + 1
		case '}':
			if i+1 < len(content) && content[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			b.WriteByte('}')
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String(), missing
}

// Placeholders returns the distinct placeholder names referenced by content.
func Placeholders(content string) []string {
	var names []string
	seen := make(map[string]bool)
	for i := 0; i < len(content); {
		if content[i] != '{' {
			i++
			continue
		}
		if i+1 < len(content) && content[i+1] == '{' {
			i += 2
			continue
		}
		end := strings.IndexByte(content[i:], '}')
		if end < 0 {
			break
		}
		name := content[i+1 : i+end]
		if isPlaceholderName(name) && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		i += end + 1
	}
	return names
}

func isPlaceholderName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
			continue
		}
		return false
	}
	return true
}
