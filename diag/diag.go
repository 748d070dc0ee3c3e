// Package diag carries non-fatal conversion diagnostics.
//
// Conversions never abort on a single unresolved binding or unsupported style.
// Instead every step returns the problems it found as values and the caller
// aggregates them.
package diag

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Code classifies a warning.
type Code string

const (
	UnresolvedBinding     Code = "unresolved-binding"
	UnresolvedPlugin      Code = "unresolved-plugin"
	UnresolvedComponent   Code = "unresolved-component"
	UnsupportedStyle      Code = "unsupported-style"
	PercentageStyle       Code = "percentage-style"
	DynamicStyle          Code = "dynamic-style"
	UnsupportedValue      Code = "unsupported-value"
	ComputedCondition     Code = "computed-condition"
	AmbiguousBinding      Code = "ambiguous-binding"
	InvalidBindingMix     Code = "invalid-binding-mix"
	MissingImageSource    Code = "missing-image-source"
	NoVariantMatch        Code = "no-variant-match"
	UnsupportedExpression Code = "unsupported-expression"
	MissingFont           Code = "missing-font"
)

// Warning is a single diagnostic. Node identifies where it was found (node id,
// DOM path or style property), it may be empty.
type Warning struct {
	Code    Code   `json:"code"`
	Node    string `json:"node,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Node == "" {
		return fmt.Sprintf("[%s] %s", w.Code, w.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", w.Code, w.Node, w.Message)
}

// New makes a warning with formatted message.
func New(code Code, node, format string, args ...any) Warning {
	return Warning{Code: code, Node: node, Message: fmt.Sprintf(format, args...)}
}

// List accumulates warnings in the order they were reported.
type List []Warning

// Add appends formatted warning.
func (l *List) Add(code Code, node, format string, args ...any) {
	*l = append(*l, New(code, node, format, args...))
}

// Append appends already prepared warnings.
func (l *List) Append(ws ...Warning) {
	*l = append(*l, ws...)
}

// Has reports whether list contains at least one warning with given code.
func (l List) Has(code Code) bool {
	for _, w := range l {
		if w.Code == code {
			return true
		}
	}
	return false
}

// Count returns number of warnings with given code.
func (l List) Count(code Code) int {
	n := 0
	for _, w := range l {
		if w.Code == code {
			n++
		}
	}
	return n
}

func (l List) String() string {
	parts := make([]string, 0, len(l))
	for _, w := range l {
		parts = append(parts, w.String())
	}
	return strings.Join(parts, "\n")
}

// Log reports all warnings to the logger. Library code returns warnings,
// only program entry points are expected to call this.
func (l List) Log(log *zap.Logger) {
	for _, w := range l {
		log.Warn("Conversion warning", zap.String("code", string(w.Code)), zap.String("node", w.Node), zap.String("message", w.Message))
	}
}
