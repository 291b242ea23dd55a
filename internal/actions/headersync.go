package actions

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

var (
	headerExts = []string{".h", ".hpp"}
	sourceExts = []string{".cpp", ".cc"}

	declaredClassRe = regexp.MustCompile(`(?m)^\s*(?:class|struct)\s+(?:\w+_API\s+)?(\w+)\s*(?:final\s*)?[:{\n]`)
)

const diffContext = 3

// IsHeader reports whether path names a C++ header.
func IsHeader(path string) bool { return hasExt(path, headerExts) }

// IsSource reports whether path names a C++ translation unit.
func IsSource(path string) bool { return hasExt(path, sourceExts) }

func hasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// Counterpart returns the sibling file that pairs with path: the first of
// the candidate extensions that exists, else the first candidate.
func Counterpart(path string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	exts := sourceExts
	if IsSource(path) {
		exts = headerExts
	}
	for _, e := range exts {
		if _, err := os.Stat(base + e); err == nil {
			return base + e
		}
	}
	return base + exts[0]
}

func (p *Provider) syncHeaderSource(params Params) (string, error) {
	path := uriPath(params.TextDocument.URI)
	switch {
	case IsHeader(path):
		return missingImplementations(path)
	case IsSource(path):
		return missingDeclarations(path)
	default:
		return "// Unable to sync: not a valid header or source file", nil
	}
}

// missingImplementations returns a unified diff that appends a stub
// definition to the source file for every header declaration it lacks.
func missingImplementations(headerPath string) (string, error) {
	header, err := os.ReadFile(headerPath)
	if err != nil {
		return "", fmt.Errorf("actions: read header: %w", err)
	}
	sourcePath := Counterpart(headerPath)
	source, err := readOptional(sourcePath)
	if err != nil {
		return "", err
	}

	class := primaryClass(string(header))
	defined := make(map[string]bool)
	for _, f := range FindFunctions(source) {
		if f.Body && f.Class != "" {
			defined[f.Class+"::"+f.Name] = true
		}
	}

	var stubs []string
	for _, f := range FindFunctions(string(header)) {
		if f.Body || f.Class != "" || defined[class+"::"+f.Name] {
			continue
		}
		stubs = append(stubs, definitionStub(class, f))
	}
	if len(stubs) == 0 {
		return "// " + filepath.Base(sourcePath) + " already implements every declaration", nil
	}

	updated := source
	if updated != "" && !strings.HasSuffix(updated, "\n") {
		updated += "\n"
	}
	if updated == "" {
		updated = "#include \"" + filepath.Base(headerPath) + "\"\n"
	}
	updated += "\n" + strings.Join(stubs, "\n")

	return unifiedDiff(sourcePath, source, updated)
}

// missingDeclarations lists declarations for source definitions that the
// paired header does not declare.
func missingDeclarations(sourcePath string) (string, error) {
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("actions: read source: %w", err)
	}
	headerPath := Counterpart(sourcePath)
	header, err := readOptional(headerPath)
	if err != nil {
		return "", err
	}

	declared := make(map[string]bool)
	for _, f := range FindFunctions(header) {
		declared[f.Name] = true
	}

	var b strings.Builder
	for _, f := range FindFunctions(string(source)) {
		if !f.Body || f.Class == "" || declared[f.Name] {
			continue
		}
		declared[f.Name] = true
		params := make([]string, len(f.Params))
		for i, p := range f.Params {
			params[i] = stripDefault(p)
		}
		fmt.Fprintf(&b, "\t%s %s(%s);\n", f.ReturnType, f.Name, strings.Join(params, ", "))
	}
	if b.Len() == 0 {
		return "// " + filepath.Base(headerPath) + " already declares every definition", nil
	}
	return "// Declarations missing from " + filepath.Base(headerPath) + "\n" + b.String(), nil
}

func definitionStub(class string, f Function) string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = stripDefault(p)
	}
	ret := f.ReturnType
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s::%s(%s)\n{\n", ret, class, f.Name, strings.Join(params, ", "))
	if ret != "void" {
		b.WriteString("\treturn {};\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func primaryClass(header string) string {
	if m := declaredClassRe.FindStringSubmatch(header); m != nil {
		return m[1]
	}
	return ""
}

func readOptional(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("actions: read %s: %w", path, err)
	}
	return string(data), nil
}

func unifiedDiff(path, before, after string) (string, error) {
	from := path
	if before == "" {
		from = "/dev/null"
	}
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: from,
		ToFile:   path,
		Context:  diffContext,
	})
	if err != nil {
		return "", fmt.Errorf("actions: diff: %w", err)
	}
	return out, nil
}

// splitLines keeps line endings so hunks render verbatim.
func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
