package voice

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// pattern is a compiled command phrase.
//
// Syntax: literal words match case-insensitively with any run of whitespace
// between them; ":name" captures one word; "*name" captures everything up to
// the next literal (or the end); "(words)" is optional.
type pattern struct {
	source string
	re     *regexp.Regexp
	params []string
}

func compilePattern(source string) (*pattern, error) {
	src := strings.TrimSpace(source)
	if src == "" {
		return nil, fmt.Errorf("empty command pattern")
	}
	var params []string
	body, err := compileSegment([]rune(src), &params)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", source, err)
	}
	re, err := regexp.Compile(`(?i)^` + body + `$`)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", source, err)
	}
	return &pattern{source: source, re: re, params: params}, nil
}

func compileSegment(rs []rune, params *[]string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case r == '(':
			depth, j := 1, i+1
			for ; j < len(rs) && depth > 0; j++ {
				switch rs[j] {
				case '(':
					depth++
				case ')':
					depth--
				}
			}
			if depth != 0 {
				return "", fmt.Errorf("unclosed optional group at %d", i)
			}
			inner, err := compileSegment([]rune(strings.TrimSpace(string(rs[i+1:j-1]))), params)
			if err != nil {
				return "", err
			}
			// The optional group absorbs its surrounding whitespace.
			out := strings.TrimSuffix(b.String(), `\s+`)
			b.Reset()
			b.WriteString(out)
			b.WriteString(`\s*(?:` + inner + `)?\s*`)
			i = j
			for i < len(rs) && unicode.IsSpace(rs[i]) {
				i++
			}
		case r == ')':
			return "", fmt.Errorf("unbalanced ')' at %d", i)
		case r == ':' || r == '*':
			j := i + 1
			for j < len(rs) && isWordRune(rs[j]) {
				j++
			}
			if j == i+1 {
				return "", fmt.Errorf("%q at %d needs a parameter name", r, i)
			}
			*params = append(*params, string(rs[i+1:j]))
			if r == ':' {
				b.WriteString(`(\S+)`)
			} else {
				b.WriteString(`(.*?)`)
			}
			i = j
		case unicode.IsSpace(r):
			for i < len(rs) && unicode.IsSpace(rs[i]) {
				i++
			}
			b.WriteString(`\s+`)
		default:
			j := i
			for j < len(rs) && !unicode.IsSpace(rs[j]) && !strings.ContainsRune("()*:", rs[j]) {
				j++
			}
			b.WriteString(regexp.QuoteMeta(string(rs[i:j])))
			i = j
		}
	}
	return b.String(), nil
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// match returns the captured arguments when phrase matches.
func (p *pattern) match(phrase string) ([]string, bool) {
	m := p.re.FindStringSubmatch(strings.TrimSpace(phrase))
	if m == nil {
		return nil, false
	}
	return m[1:], true
}
