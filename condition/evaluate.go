package condition

import (
	"strconv"
)

type term struct {
	join  string
	value bool
}

// Evaluate tells whether the tokenized condition holds for the given
// assignment of identifier paths to literal values. Computed operands and
// paths missing from the assignment do not restrict the result. Operands of
// the same top level group are combined first, && binds tighter than ||.
func Evaluate(ids []Identifier, assignment map[string]string) bool {
	if len(ids) == 0 {
		return true
	}

	var groups, inner []term
	flush := func() {
		if len(inner) > 0 {
			groups = append(groups, term{join: inner[0].join, value: reduce(inner)})
			inner = nil
		}
	}

	current := ids[0].Group
	for _, id := range ids {
		if id.Group != current {
			flush()
			current = id.Group
		}
		inner = append(inner, term{join: id.Join, value: evalOne(id, assignment)})
	}
	flush()
	return reduce(groups)
}

// reduce evaluates OR of AND chains, join of the first term is ignored.
func reduce(terms []term) bool {
	result, chain := false, true
	for i, t := range terms {
		if i > 0 && t.join == "||" {
			result = result || chain
			chain = true
		}
		chain = chain && t.value
	}
	return result || chain
}

func evalOne(id Identifier, assignment map[string]string) bool {
	if id.Computed || id.Path == "" {
		return true
	}
	v, ok := assignment[id.Path]
	if !ok {
		return true
	}

	var res bool
	switch id.Operator {
	case OpNone:
		res = v != "" && v != "false" && v != "0"
	case OpEq:
		res = v == id.Value
	case OpNe:
		res = v != id.Value
	default:
		a, errA := strconv.ParseFloat(v, 64)
		b, errB := strconv.ParseFloat(id.Value, 64)
		if errA != nil || errB != nil {
			return true
		}
		switch id.Operator {
		case OpGt:
			res = a > b
		case OpLt:
			res = a < b
		case OpGe:
			res = a >= b
		case OpLe:
			res = a <= b
		}
	}
	if id.Negated {
		return !res
	}
	return res
}
