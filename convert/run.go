package convert

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"fjc/archive"
	"fjc/config"
	"fjc/contract"
	"fjc/convert/designdoc"
	"fjc/convert/jayhtml"
	"fjc/design"
	"fjc/state"
)

// fileFunc converts single source. "r" gives source content. "src" is the
// file on disk it came from, for archive entries it is the archive. "rel" is
// part of the source path (always including file name) relative to the
// original path: base file name when file was specified, relative path when
// walking directory or archive. "dst" is the destination directory.
type fileFunc func(ctx context.Context, r io.Reader, src, rel, dst string, log *zap.Logger) error

func exportOptions(cfg *config.ExportConfig) jayhtml.Options {
	return jayhtml.Options{
		Indent:           cfg.Indent,
		EmitIDs:          cfg.EmitIDs,
		PlaceholderImage: cfg.PlaceholderImage,
		FontsURL:         cfg.FontsURL,
	}
}

func importOptions(cfg *config.ImportConfig) designdoc.Options {
	return designdoc.Options{
		IDLength: cfg.IDLength,
		Route:    cfg.DefaultRoute,
		Name:     cfg.DefaultName,
	}
}

// prepare handles command line common to all conversion commands.
func prepare(ctx context.Context, cmd *cli.Command, log *zap.Logger) (src, dst string, err error) {
	env := state.EnvFromContext(ctx)

	src = cmd.Args().Get(0)
	if len(src) == 0 {
		return "", "", errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return "", "", err
	}

	dst = cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return "", "", fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return "", "", err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	if p := cmd.String("page"); len(p) > 0 {
		if env.Page, err = contract.LoadPage(p); err != nil {
			return "", "", err
		}
		if err := env.Rpt.StoreCopy("pages", p); err != nil {
			log.Debug("Unable to store page configuration in report", zap.Error(err))
		}
		log.Debug("Using page configuration", zap.String("page", p), zap.String("route", env.Page.Route))
	}
	return src, dst, nil
}

// Export converts vendor documents to Jay HTML pages.
func Export(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("export")

	src, dst, err := prepare(ctx, cmd, log)
	if err != nil {
		return err
	}

	validator, err := design.NewValidator()
	if err != nil {
		return err
	}
	exporter := jayhtml.New(exportOptions(&env.Cfg.Conversion.Export), log)

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, kindDocument, guard(func(ctx context.Context, r io.Reader, src, rel, dst string, log *zap.Logger) error {
		return exportFile(ctx, exporter, validator, r, src, rel, dst, log)
	}), log)
}

// Import converts Jay HTML pages to vendor documents.
func Import(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("import")

	src, dst, err := prepare(ctx, cmd, log)
	if err != nil {
		return err
	}

	importer := designdoc.New(importOptions(&env.Cfg.Conversion.Import), log)

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, kindPage, guard(func(ctx context.Context, r io.Reader, src, rel, dst string, log *zap.Logger) error {
		return importFile(ctx, importer, r, src, rel, dst, log)
	}), log)
}

// Validate runs conformance gate over vendor documents without converting
// them. All violations of all documents are reported.
func Validate(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("validate")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	validator, err := design.NewValidator()
	if err != nil {
		return err
	}

	var valid, invalid int
	defer func(start time.Time) {
		log.Info("Validation completed", zap.Int("valid", valid), zap.Int("invalid", invalid), zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, "", kindDocument, func(ctx context.Context, r io.Reader, _, rel, _ string, log *zap.Logger) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		if _, err := validator.ValidateJSON(data); err != nil {
			invalid++
			for _, e := range multierr.Errors(err) {
				log.Error("Document is not valid", zap.String("file", rel), zap.Error(e))
			}
			return fmt.Errorf("%s: %w", rel, err)
		}
		valid++
		log.Debug("Document is valid", zap.String("file", rel))
		return nil
	}, log)
}

// process determines the input type (directory, archive or single file) and
// processes accordingly. Source may point inside archive:
// "bundle.zip/pages/shop" selects entries under "pages/shop".
func process(ctx context.Context, src, dst string, kind sourceKind, fn fileFunc, log *zap.Logger) error {
	var head string
	for head = src; len(head) != 0; head, _ = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if head != src {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			return processDir(ctx, head, dst, kind, fn, log)
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := archive.IsArchive(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			pathIn := filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			return processArchive(ctx, head, pathIn, "", dst, kind, fn, log)
		}

		if head != src {
			return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}
		actual, err := detectSource(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if actual != kind {
			return fmt.Errorf("input was not recognized as %s (%s)", kind, head)
		}
		return processFile(ctx, head, filepath.Base(head), dst, fn, log)
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

func processFile(ctx context.Context, path, rel, dst string, fn fileFunc, log *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(ctx, f, path, rel, dst, log)
}

// processDir walks directory tree finding files of requested kind and
// archives and processes them. Failure of one file does not stop the walk,
// all failures are returned together.
func processDir(ctx context.Context, dir, dst string, kind sourceKind, fn fileFunc, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	var failed error
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		isArchive, err := archive.IsArchive(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if isArchive {
			count++
			if err := processArchive(ctx, path, "", filepath.Dir(rel), dst, kind, fn, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
				failed = multierr.Append(failed, err)
			}
			return nil
		}

		actual, err := detectSource(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if actual != kind {
			log.Debug("Skipping file, not recognized as "+kind.String(), zap.String("file", path))
			return nil
		}

		count++
		if err := processFile(ctx, path, rel, dst, fn, log); err != nil {
			failed = multierr.Append(failed, err)
		}
		return nil
	})
	return multierr.Append(err, failed)
}

// processArchive walks files inside archive under "pathIn" and processes
// those of requested kind. "pathOut" is prepended to relative names, it is
// archive location when archive was found walking directory.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, kind sourceKind, fn fileFunc, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path), zap.String("path", pathIn))
		}
	}()

	var failed error
	err = archive.Walk(path, pathIn, func(name string) bool {
		return strings.EqualFold(sourceExt(name), kind.ext())
	}, func(name string, r io.Reader) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		br := bufio.NewReaderSize(r, sniffLen)
		head, err := sniff(br)
		if err != nil {
			log.Warn("Skipping file in archive", zap.String("archive", path), zap.String("path", name), zap.Error(err))
			return nil
		}
		if detectKind(name, head) != kind {
			log.Debug("Skipping file in archive, not recognized as "+kind.String(), zap.String("archive", path), zap.String("path", name))
			return nil
		}

		count++
		if err := fn(ctx, br, path, filepath.Join(pathOut, filepath.FromSlash(name)), dst, log); err != nil {
			failed = multierr.Append(failed, err)
		}
		return nil
	})
	return multierr.Append(err, failed)
}

// guard logs conversion of single file and stops panic from spreading, so
// one bad file does not end processing of the others.
func guard(fn fileFunc) fileFunc {
	return func(ctx context.Context, r io.Reader, src, rel, dst string, log *zap.Logger) (rerr error) {
		log.Info("Conversion starting", zap.String("from", rel))
		defer func(start time.Time) {
			if r := recover(); r != nil {
				log.Error("Conversion ended with panic",
					zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("from", rel), zap.ByteString("stack", debug.Stack()))
				rerr = fmt.Errorf("conversion panic: %v", r)
			} else if rerr != nil {
				log.Error("Unable to process file", zap.String("file", src), zap.Error(rerr))
			} else {
				log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)))
			}
		}(time.Now())
		return fn(ctx, r, src, rel, dst, log)
	}
}

func exportFile(ctx context.Context, exporter *jayhtml.Exporter, validator *design.Validator, r io.Reader, src, rel, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	var doc *design.Document
	if env.Cfg.Conversion.Export.ValidateInput {
		doc, err = validator.ValidateJSON(data)
	} else {
		doc, err = design.Unmarshal(bytes.NewReader(data))
	}
	if err != nil {
		return fmt.Errorf("unable to read document (%s): %w", rel, err)
	}

	page, err := env.PageFor(src)
	if err != nil {
		return err
	}

	res, err := exporter.Export(doc, page)
	if err != nil {
		return fmt.Errorf("unable to export document (%s): %w", rel, err)
	}
	res.Warnings.Log(log)

	out, err := res.Bytes()
	if err != nil {
		return fmt.Errorf("unable to serialize page: %w", err)
	}

	v := newValues(doc.Name, doc.Root.Meta(design.MetaRoute), doc.ID, rel, kindPage)
	outputName := buildOutputPath(v, rel, dst, kindPage, env)
	if err := writeOutput(outputName, out, env, log); err != nil {
		return err
	}

	if env.Rpt != nil {
		name := filepath.ToSlash(rel)
		env.Rpt.StoreData("debug/"+name+".design.txt", []byte(dumpDocument(doc)))
		if len(res.Warnings) > 0 {
			env.Rpt.StoreData("debug/"+name+".warnings.txt", []byte(res.Warnings.String()))
		}
		env.Rpt.Store("result/"+name+pageExt, outputName)
	}
	log.Debug("Page written", zap.String("to", outputName), zap.Strings("fonts", res.Fonts), zap.Int("warnings", len(res.Warnings)))
	return nil
}

func importFile(ctx context.Context, importer *designdoc.Importer, r io.Reader, src, rel, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	page, err := env.PageFor(src)
	if err != nil {
		return err
	}
	if page == nil {
		log.Warn("No page configuration found, bindings will not be resolved", zap.String("file", rel))
	}

	res, err := importer.Import(r, page)
	if err != nil {
		return fmt.Errorf("unable to import page (%s): %w", rel, err)
	}
	res.Warnings.Log(log)

	out, err := design.Marshal(res.Doc)
	if err != nil {
		return err
	}

	v := newValues(res.Doc.Name, res.Tree.Route, res.Doc.ID, rel, kindDocument)
	outputName := buildOutputPath(v, rel, dst, kindDocument, env)
	if err := writeOutput(outputName, out, env, log); err != nil {
		return err
	}

	if env.Rpt != nil {
		name := filepath.ToSlash(rel)
		env.Rpt.StoreData("debug/"+name+".ir.txt", []byte(dumpTree(res.Tree)))
		env.Rpt.StoreData("debug/"+name+".design.txt", []byte(dumpDocument(res.Doc)))
		if len(res.Warnings) > 0 {
			env.Rpt.StoreData("debug/"+name+".warnings.txt", []byte(res.Warnings.String()))
		}
		env.Rpt.Store("result/"+name+documentExt, outputName)
	}
	log.Debug("Document written", zap.String("to", outputName), zap.Int("components", len(res.Doc.Components)), zap.Int("warnings", len(res.Warnings)))
	return nil
}

// writeOutput writes result honoring overwrite setting.
func writeOutput(name string, data []byte, env *state.LocalEnv, log *zap.Logger) error {
	if _, err := os.Stat(name); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Warn("Overwriting existing file", zap.String("file", name))
		if err = os.Remove(name); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return os.WriteFile(name, data, 0644)
}
