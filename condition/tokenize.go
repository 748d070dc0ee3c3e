// Package condition parses conditional rendering expressions (the "if"
// attribute of Jay HTML) into flat lists of identifier predicates.
package condition

import (
	"regexp"
	"strings"
)

// Operator is a comparison operator. Empty operator means implicit boolean test.
type Operator string

const (
	OpNone Operator = ""
	OpEq   Operator = "=="
	OpNe   Operator = "!="
	OpGe   Operator = ">="
	OpLe   Operator = "<="
	OpGt   Operator = ">"
	OpLt   Operator = "<"
)

// operators in longest-match order.
var operators = []Operator{OpEq, OpNe, OpGe, OpLe, OpGt, OpLt}

// Identifier is a single atomic predicate of a condition expression.
type Identifier struct {
	Raw      string   // source text of the operand
	Join     string   // combinator joining it to the previous operand: "", "&&" or "||"
	Group    int      // index of the top level operand it was flattened from
	Path     string   // dot separated identifier path, empty for computed syntax
	Operator Operator // comparison operator
	Value    string   // compared literal, quotes stripped
	Negated  bool
	Computed bool
	// Accessor is set when the last segment of a multi segment path is a
	// reserved accessor such as items.length. Path, Operator and Value are kept.
	Accessor bool
}

// Segments returns path split into segments.
func (id Identifier) Segments() []string {
	if id.Path == "" {
		return nil
	}
	return strings.Split(id.Path, ".")
}

// reservedAccessors make an identifier path computed when they follow
// another segment.
var reservedAccessors = map[string]bool{
	"length": true,
	"size":   true,
}

var (
	identPath = regexp.MustCompile(`^[A-Za-z_$][\w$]*(\.[A-Za-z_$][\w$]*)*$`)
	callLike  = regexp.MustCompile(`[\w$\]]\s*\(`)
)

// Tokenize splits expression on top level && and || and parses every operand.
// Parenthesized groups of || (or &&) are flattened one level. Output order
// follows the source.
func Tokenize(expr string) []Identifier {
	var out []Identifier
	for group, part := range splitTopLevel(expr) {
		text := strings.TrimSpace(part.text)
		inner := stripOuterParens(text)
		if inner != text {
			if sub := splitTopLevel(inner); len(sub) > 1 {
				for i, s := range sub {
					join := s.join
					if i == 0 {
						join = part.join
					}
					id := parseOperand(s.text, join)
					id.Group = group
					out = append(out, id)
				}
				continue
			}
		}
		id := parseOperand(text, part.join)
		id.Group = group
		out = append(out, id)
	}
	return out
}

// Paths returns distinct non-computed identifier paths in order of appearance.
func Paths(ids []Identifier) []string {
	var (
		seen  = make(map[string]bool)
		paths []string
	)
	for _, id := range ids {
		if id.Computed || id.Path == "" || seen[id.Path] {
			continue
		}
		seen[id.Path] = true
		paths = append(paths, id.Path)
	}
	return paths
}

type operand struct {
	text string
	join string
}

// splitTopLevel splits on && and || at paren/bracket/brace depth zero and
// outside of string literals.
func splitTopLevel(expr string) []operand {
	var (
		parts []operand
		depth int
		quote byte
		start int
		join  string
	)
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '&', '|':
			if depth == 0 && i+1 < len(expr) && expr[i+1] == c {
				parts = append(parts, operand{text: strings.TrimSpace(expr[start:i]), join: join})
				join = expr[i : i+2]
				start = i + 2
				i++
			}
		}
	}
	parts = append(parts, operand{text: strings.TrimSpace(expr[start:]), join: join})
	return parts
}

// stripOuterParens removes balanced parentheses enclosing the whole text.
func stripOuterParens(s string) string {
	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' && matchingParen(s, 0) == len(s)-1 {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// matchingParen returns index of parenthesis closing the one at open.
func matchingParen(s string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseOperand(raw, join string) Identifier {
	id := Identifier{Raw: raw, Join: join}
	text := stripOuterParens(strings.TrimSpace(raw))

	if strings.HasPrefix(text, "!") && !strings.HasPrefix(text, "!=") {
		rest := strings.TrimSpace(text[1:])
		switch {
		case rest != "" && rest[0] == '(' && matchingParen(rest, 0) == len(rest)-1:
			inner := stripOuterParens(rest)
			if len(splitTopLevel(inner)) > 1 {
				id.Computed = true
				return id
			}
			id.Negated = true
			text = inner
		case identPath.MatchString(rest):
			id.Negated = true
			text = rest
		default:
			id.Computed = true
			return id
		}
	}

	if isComputedSyntax(text) {
		id.Computed = true
		return id
	}

	left, op, right := splitComparison(text)
	if op == OpNone {
		if !identPath.MatchString(text) {
			id.Computed = true
			return id
		}
		id.Path = text
	} else {
		switch {
		case identPath.MatchString(left) && !isLiteral(left):
			id.Path, id.Value = left, unquoteLiteral(right)
		case identPath.MatchString(right) && !isLiteral(right):
			// literal on the left side, flip the comparison
			id.Path, id.Value = right, unquoteLiteral(left)
			op = flip(op)
		default:
			id.Computed = true
			return id
		}
		id.Operator = op
	}

	if segs := id.Segments(); len(segs) > 1 && reservedAccessors[segs[len(segs)-1]] {
		id.Computed = true
		id.Accessor = true
	}
	return id
}

// ResolveAccessors returns copy of ids where accessor identifiers whose whole
// path names a real tag (as told by isTag) are plain identifiers again.
func ResolveAccessors(ids []Identifier, isTag func(path string) bool) []Identifier {
	out := make([]Identifier, len(ids))
	for i, id := range ids {
		if id.Accessor && isTag(id.Path) {
			id.Computed = false
			id.Accessor = false
		}
		out[i] = id
	}
	return out
}

// isComputedSyntax detects ternary, function call and template literal forms.
func isComputedSyntax(s string) bool {
	if strings.ContainsRune(s, '`') {
		return true
	}
	plain := stripStrings(s)
	if callLike.MatchString(plain) {
		return true
	}
	return strings.Contains(plain, "?") && strings.Contains(plain, ":")
}

// stripStrings blanks out quoted literals so that their content does not
// influence syntax detection.
func stripStrings(s string) string {
	var (
		b     strings.Builder
		quote byte
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
				b.WriteByte(c)
			}
			continue
		}
		if c == '\'' || c == '"' {
			quote = c
		}
		b.WriteByte(c)
	}
	return b.String()
}

// splitComparison finds the first top level comparison operator, preferring
// two character operators.
func splitComparison(s string) (string, Operator, string) {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
			continue
		case '(', '[', '{':
			depth++
			continue
		case ')', ']', '}':
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		for _, op := range operators {
			if strings.HasPrefix(s[i:], string(op)) {
				right := s[i+len(op):]
				// tolerate strict equality forms
				right = strings.TrimPrefix(right, "=")
				return strings.TrimSpace(s[:i]), op, strings.TrimSpace(right)
			}
		}
	}
	return s, OpNone, ""
}

func flip(op Operator) Operator {
	switch op {
	case OpGt:
		return OpLt
	case OpLt:
		return OpGt
	case OpGe:
		return OpLe
	case OpLe:
		return OpGe
	}
	return op
}

func isLiteral(s string) bool {
	switch s {
	case "true", "false", "null", "undefined":
		return true
	}
	return false
}

func unquoteLiteral(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
