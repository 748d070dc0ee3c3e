package css

import (
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Declaration is a single "property: value" pair from an inline style.
type Declaration struct {
	Property string
	Value    string
}

// SplitDeclarations splits inline style text on ';' and then on the first ':',
// trimming both sides. Empty and malformed fragments are skipped.
func SplitDeclarations(inline string) []Declaration {
	var decls []Declaration
	for frag := range strings.SplitSeq(inline, ";") {
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}
		prop, val, found := strings.Cut(frag, ":")
		if !found {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if prop == "" || val == "" {
			continue
		}
		decls = append(decls, Declaration{Property: prop, Value: val})
	}
	return decls
}

// parseValues tokenizes a declaration value into its components. Whitespace and
// commas separate components, functions are kept whole.
func parseValues(raw string) []Value {
	lexer := css.NewLexer(parse.NewInputString(raw))

	var (
		values []Value
		fn     strings.Builder
		depth  int
	)
	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			break
		}
		if depth > 0 {
			fn.Write(data)
			switch tt {
			case css.FunctionToken, css.LeftParenthesisToken:
				depth++
			case css.RightParenthesisToken:
				depth--
			}
			if depth == 0 {
				values = append(values, Value{Raw: fn.String(), Keyword: strings.ToLower(fn.String()), Kind: KindFunction})
				fn.Reset()
			}
			continue
		}

		text := string(data)
		switch tt {
		case css.WhitespaceToken, css.CommaToken, css.CommentToken:
			continue
		case css.FunctionToken:
			fn.Write(data)
			depth = 1
		case css.DimensionToken:
			num, unit := splitNumber(text)
			f, _ := strconv.ParseFloat(num, 64)
			values = append(values, Value{Raw: text, Value: f, Unit: unit, Kind: KindDimension})
		case css.PercentageToken:
			f, _ := strconv.ParseFloat(strings.TrimSuffix(text, "%"), 64)
			values = append(values, Value{Raw: text, Value: f, Unit: "%", Kind: KindPercentage})
		case css.NumberToken:
			f, _ := strconv.ParseFloat(text, 64)
			values = append(values, Value{Raw: text, Value: f, Kind: KindNumber})
		case css.HashToken:
			values = append(values, Value{Raw: text, Keyword: strings.ToLower(text), Kind: KindHash})
		case css.StringToken:
			values = append(values, Value{Raw: text, Keyword: unquote(text), Kind: KindString})
		default:
			values = append(values, Value{Raw: text, Keyword: strings.ToLower(text), Kind: KindKeyword})
		}
	}
	if depth > 0 && fn.Len() > 0 {
		// unterminated function, keep what we have
		values = append(values, Value{Raw: fn.String(), Keyword: strings.ToLower(fn.String()), Kind: KindFunction})
	}
	return values
}

// splitTopLevel splits s on commas which are not inside parentheses.
func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}
