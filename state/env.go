// Package state defines shared program state.
package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"fjc/config"
	"fjc/contract"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by conversion commands
	NoDirs    bool
	Overwrite bool
	// Page is page configuration given on command line, it takes precedence
	// over configuration found next to sources.
	Page *contract.Page

	pages         map[string]*contract.Page
	start         time.Time
	restoreStdLog func()
}

func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
		pages: make(map[string]*contract.Page),
	}
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// PageFor returns page configuration for source file: the one given on
// command line or the configured page file in the source directory. Loaded
// configurations are cached per directory. Nil page without error means none
// is available and every binding will be reported unresolved.
func (e *LocalEnv) PageFor(src string) (*contract.Page, error) {
	if e.Page != nil {
		return e.Page, nil
	}
	if e.Cfg == nil || e.Cfg.Conversion.Import.PageConfig == "" {
		return nil, nil
	}

	dir := filepath.Dir(src)
	if p, ok := e.pages[dir]; ok {
		return p, nil
	}
	if e.pages == nil {
		e.pages = make(map[string]*contract.Page)
	}

	name := filepath.Join(dir, e.Cfg.Conversion.Import.PageConfig)
	p, err := contract.LoadPage(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			e.pages[dir] = nil
			return nil, nil
		}
		return nil, fmt.Errorf("unable to load page configuration: %w", err)
	}
	e.pages[dir] = p
	if err := e.Rpt.StoreCopy("pages", name); err != nil && e.Log != nil {
		e.Log.Debug("Unable to store page configuration in report", zap.Error(err))
	}
	return p, nil
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
