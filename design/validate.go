package design

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/multierr"

	"fjc/binding"
)

//go:embed schema.json
var schemaJSON []byte

const (
	schemaURL = "https://fjc.local/schema/design-document.json"
	// documents with this major version are understood
	versionConstraint = "^1.0.0"
)

var (
	ErrSchema      = errors.New("document does not match schema")
	ErrVersion     = errors.New("unsupported document schema version")
	ErrConformance = errors.New("document is not conformant")
)

// Validator is the conformance gate every exported or imported document
// must pass.
type Validator struct {
	schema     *jsonschema.Schema
	constraint *semver.Constraints
}

// NewValidator compiles embedded document schema.
func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to load document schema: %w", err)
	}
	schema, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile document schema: %w", err)
	}
	constraint, err := semver.NewConstraint(versionConstraint)
	if err != nil {
		return nil, fmt.Errorf("bad version constraint: %w", err)
	}
	return &Validator{schema: schema, constraint: constraint}, nil
}

var defaultValidator = sync.OnceValues(NewValidator)

// Validate checks document with the default validator.
func Validate(d *Document) error {
	v, err := defaultValidator()
	if err != nil {
		return err
	}
	return v.Validate(d)
}

// Validate runs structural, version and semantic checks, all violations are
// reported together.
func (v *Validator) Validate(d *Document) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("unable to encode document: %w", err)
	}
	return v.check(data, d)
}

// ValidateJSON decodes and validates document JSON.
func (v *Validator) ValidateJSON(data []byte) (*Document, error) {
	d, err := Unmarshal(bytes.NewReader(data))
	if err != nil {
		// still report schema problems, they are more descriptive
		if serr := v.structural(data); serr != nil {
			return nil, multierr.Append(err, serr)
		}
		return nil, err
	}
	return d, v.check(data, d)
}

func (v *Validator) structural(data []byte) error {
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}
	if err := v.schema.Validate(generic); err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}
	return nil
}

func (v *Validator) check(data []byte, d *Document) error {
	var errs error

	if err := v.structural(data); err != nil {
		errs = multierr.Append(errs, err)
	}

	ver, err := semver.NewVersion(d.SchemaVersion)
	switch {
	case err != nil:
		errs = multierr.Append(errs, fmt.Errorf("%w: %q: %w", ErrVersion, d.SchemaVersion, err))
	case !v.constraint.Check(ver):
		errs = multierr.Append(errs, fmt.Errorf("%w: %s does not satisfy %s", ErrVersion, ver, versionConstraint))
	}

	return multierr.Append(errs, semantic(d))
}

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConformance, fmt.Sprintf(format, args...))
}

// semantic checks invariants a schema cannot express.
func semantic(d *Document) error {
	var errs error

	if d.Root == nil {
		return violation("document has no root")
	}
	if !IsPage(d.Root) {
		errs = multierr.Append(errs, violation("root %q is not marked as page with route", d.Root.ID))
	}

	seen := make(map[string]bool)
	components := make(map[string]bool)
	check := func(n *Node) bool {
		if n.ID == "" {
			errs = multierr.Append(errs, violation("%s node %q has no id", n.Kind, n.Name))
		} else if seen[n.ID] {
			errs = multierr.Append(errs, violation("duplicate node id %q", n.ID))
		}
		seen[n.ID] = true
		if n.Kind == KindComponent {
			components[n.ID] = true
		}
		return true
	}
	d.Root.Walk(check)
	for _, c := range d.Components {
		c.Walk(check)
	}

	verify := func(n *Node) bool {
		switch n.Kind {
		case KindInstance:
			if n.MainComponentID == "" {
				errs = multierr.Append(errs, violation("instance %q has no main component", n.ID))
			} else if !components[n.MainComponentID] {
				errs = multierr.Append(errs, violation("instance %q refers to missing component %q", n.ID, n.MainComponentID))
			}
		case KindComponentSet:
			for _, c := range n.Children {
				if c.Kind != KindComponent {
					errs = multierr.Append(errs, violation("component set %q has %s child %q", n.ID, c.Kind, c.ID))
				}
			}
		}
		if n.Meta(MetaPage) != "" && n.Meta(MetaRoute) == "" {
			errs = multierr.Append(errs, violation("page node %q has no route", n.ID))
		}
		if s := n.Meta(MetaBindings); s != "" {
			if _, err := binding.Decode(s); err != nil {
				errs = multierr.Append(errs, violation("node %q bindings: %v", n.ID, err))
			}
		}
		return true
	}
	d.Root.Walk(verify)
	for _, c := range d.Components {
		if c.Kind != KindComponentSet && c.Kind != KindComponent {
			errs = multierr.Append(errs, violation("component library holds %s node %q", c.Kind, c.ID))
		}
		c.Walk(verify)
	}
	return errs
}
