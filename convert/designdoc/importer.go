package designdoc

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"fjc/binding"
	"fjc/contract"
	"fjc/css"
	"fjc/design"
	"fjc/diag"
	"fjc/ident"
	"fjc/ir"
	"fjc/variant"
)

// Options control import.
type Options struct {
	// IDLength is the length of generated node ids.
	IDLength int
	// Route is used when page configuration does not provide one.
	Route string
	// Name is used when neither page configuration nor page title provide
	// one.
	Name string
}

// DefaultOptions returns options used when nothing is configured.
func DefaultOptions() Options {
	return Options{IDLength: ident.DefaultLength, Route: "/"}
}

// Result of import.
type Result struct {
	Doc      *design.Document
	Tree     *ir.Tree
	Warnings diag.List
}

// Importer converts Jay HTML pages to vendor documents. It holds no per call
// state and may be reused.
type Importer struct {
	log      *zap.Logger
	opts     Options
	ids      *ident.Generator
	resolver *css.Resolver
	x        *binding.Extractor
	synth    *variant.Synthesizer
}

// New creates importer.
func New(opts Options, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	ids := ident.New(opts.IDLength)
	x := binding.NewExtractor(ids, log)
	return &Importer{
		log:      log.Named("designdoc"),
		opts:     opts,
		ids:      ids,
		resolver: css.NewResolver(log),
		x:        x,
		synth:    variant.New(ids, x, log),
	}
}

// Import parses page, builds intermediate tree, adapts it to the vendor
// document and checks the result with the conformance gate.
func (im *Importer) Import(r io.Reader, page *contract.Page) (*Result, error) {
	start := time.Now()

	tree, ws, err := im.Build(r, page)
	if err != nil {
		return nil, err
	}
	doc, aws := Adapt(tree)
	ws.Append(aws...)

	if err := design.Validate(doc); err != nil {
		return nil, fmt.Errorf("imported document: %w", err)
	}

	im.log.Debug("Page imported",
		zap.String("route", tree.Route),
		zap.Int("components", len(doc.Components)),
		zap.Int("warnings", len(ws)),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{Doc: doc, Tree: tree, Warnings: ws}, nil
}
