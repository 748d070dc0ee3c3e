package convert

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"fjc/config"
	"fjc/state"
)

// buildOutputPath returns constructed output file path/name. It uses either
// default naming scheme (source name with new extension) or user-defined
// template and takes into account whether to preserve source directory
// structure on the output. Path is cleaned and if requested transliterated.
func buildOutputPath(v Values, src, dst string, format sourceKind, env *state.LocalEnv) string {
	outDir := determineOutputDir(src, dst, env)
	defaultFile := buildDefaultFileName(src, format, env)

	tmpl := env.Cfg.Conversion.Output.NameTemplate
	if tmpl == "" {
		return filepath.Join(outDir, defaultFile)
	}

	expandedName := expandOutputNameTemplate(v, tmpl, env)
	if expandedName == "" {
		// fallback to default name if template expansion failed
		return filepath.Join(outDir, defaultFile)
	}

	return assemblePathWithSubdirs(outDir, expandedName, format, env)
}

func determineOutputDir(src, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	return filepath.Join(dst, filepath.Dir(src))
}

func buildDefaultFileName(src string, format sourceKind, env *state.LocalEnv) string {
	base := filepath.Base(src)
	baseName := base[:len(base)-len(sourceExt(base))]
	if env.Cfg.Conversion.Output.FileNameTransliterate {
		baseName = slug.Make(baseName)
	}
	return config.CleanFileName(baseName) + format.ext()
}

// sourceExt is filepath.Ext aware of our multi part extensions.
func sourceExt(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{pageExt, documentExt} {
		if strings.HasSuffix(lower, ext) {
			return name[len(name)-len(ext):]
		}
	}
	return filepath.Ext(name)
}

func expandOutputNameTemplate(v Values, tmpl string, env *state.LocalEnv) string {
	expandedName, err := expandTemplate(v, config.OutputNameTemplateFieldName, tmpl)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return filepath.FromSlash(strings.TrimSpace(expandedName))
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output path,
// cleaning and transliterating segments as needed
func assemblePathWithSubdirs(outDir, expandedName string, format sourceKind, env *state.LocalEnv) string {
	pathSegments := splitAndCleanPath(expandedName)
	if len(pathSegments) == 0 {
		return filepath.Join(outDir, "index"+format.ext())
	}

	fileName := cleanPathSegment(pathSegments[len(pathSegments)-1], env) + format.ext()
	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)

	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}

	dirParts = append(dirParts, fileName)
	return filepath.Join(dirParts...)
}

// splitAndCleanPath splits path into non empty segments, leading separators
// (routes always have one) are dropped.
func splitAndCleanPath(path string) []string {
	path = strings.Trim(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); ; head, tail = filepath.Split(head) {
		if tail != "" {
			segments = slices.Insert(segments, 0, tail)
		}
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Conversion.Output.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
