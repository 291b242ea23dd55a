package actions

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrorCategory groups compile errors by likely cause.
type ErrorCategory int

const (
	CategoryUnknown ErrorCategory = iota
	CategoryMissingInclude
	CategoryMemberNotFound
	CategoryUnrealMacro
	CategoryModuleNotFound
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryMissingInclude:
		return "MissingInclude"
	case CategoryMemberNotFound:
		return "MemberNotFound"
	case CategoryUnrealMacro:
		return "UnrealMacro"
	case CategoryModuleNotFound:
		return "ModuleNotFound"
	default:
		return "Unknown"
	}
}

// MaxReportedErrors caps the build error report.
const MaxReportedErrors = 20

// BuildLog is the project-relative build tool log.
var BuildLog = filepath.Join("Saved", "Logs", "UnrealBuildTool.log")

// CompileError is one interpreted compiler error line.
type CompileError struct {
	Message    string
	File       string
	Line       int
	Category   ErrorCategory
	Solution   string
	Confidence float64
}

type errorRule struct {
	re         *regexp.Regexp
	category   ErrorCategory
	solution   string
	confidence float64
}

// {1} in a solution is replaced with the first capture group.
var errorRules = []errorRule{
	{
		re:         regexp.MustCompile(`error: use of undeclared identifier '(\w+)'`),
		category:   CategoryMissingInclude,
		solution:   "Add #include for '{1}' or check spelling. Common includes for '{1}': CoreMinimal.h, Engine.h",
		confidence: 0.9,
	},
	{
		re:         regexp.MustCompile(`error: no member named '(\w+)' in`),
		category:   CategoryMemberNotFound,
		solution:   "Member '{1}' does not exist. Check spelling, access level, or add forward declaration",
		confidence: 0.8,
	},
	{
		re:         regexp.MustCompile(`error: UCLASS\(\) must be the first thing`),
		category:   CategoryUnrealMacro,
		solution:   "Move UCLASS() macro to immediately before class declaration",
		confidence: 0.95,
	},
	{
		re:         regexp.MustCompile(`error: GENERATED_BODY\(\) not found`),
		category:   CategoryUnrealMacro,
		solution:   "Add GENERATED_BODY() as first line inside UCLASS body",
		confidence: 0.95,
	},
	{
		re:         regexp.MustCompile(`error: Cannot find definition for module '(\w+)'`),
		category:   CategoryModuleNotFound,
		solution:   "Add '{1}' to PublicDependencyModuleNames in your .Build.cs file",
		confidence: 0.9,
	},
}

var (
	// clang: path/File.cpp:12:5: error: ...
	clangLocRe = regexp.MustCompile(`^\s*(.+?):(\d+):(?:\d+:)?\s*(?:fatal\s+)?error:`)
	// MSVC: C:\path\File.cpp(12): error C2065: ...
	msvcLocRe = regexp.MustCompile(`^\s*(.+?)\((\d+)(?:,\d+)?\)\s*:\s*(?:fatal\s+)?error`)
)

// InterpretError classifies one error line.
func InterpretError(line string) CompileError {
	ce := CompileError{
		Message:  strings.TrimSpace(line),
		Category: CategoryUnknown,
		Solution: "Manual investigation required",
	}
	for _, re := range []*regexp.Regexp{clangLocRe, msvcLocRe} {
		if m := re.FindStringSubmatch(line); m != nil {
			ce.File = m[1]
			ce.Line, _ = strconv.Atoi(m[2])
			break
		}
	}
	for _, rule := range errorRules {
		m := rule.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		ce.Category = rule.category
		ce.Confidence = rule.confidence
		ce.Solution = rule.solution
		if len(m) > 1 {
			ce.Solution = strings.ReplaceAll(ce.Solution, "{1}", m[1])
		}
		break
	}
	return ce
}

// ExtractCompileErrors returns the lines of the build log that contain
// "error:". A missing log yields nothing.
func ExtractCompileErrors(ctx context.Context, projectPath string) ([]string, error) {
	f, err := os.Open(filepath.Join(projectPath, BuildLog))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("actions: open build log: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for sc.Scan() {
		if ctx.Err() != nil {
			return lines, ctx.Err()
		}
		if strings.Contains(sc.Text(), "error:") {
			lines = append(lines, sc.Text())
		}
	}
	if err := sc.Err(); err != nil {
		return lines, fmt.Errorf("actions: scan build log: %w", err)
	}
	return lines, nil
}

// ErrorReport renders up to MaxReportedErrors interpreted errors.
func ErrorReport(errs []CompileError) string {
	var b strings.Builder
	b.WriteString("/*\n")
	b.WriteString(" * COMPILE ERROR ANALYSIS & SOLUTIONS\n")
	fmt.Fprintf(&b, " * Found %d compile errors\n", len(errs))
	b.WriteString(" * ==========================================\n")
	b.WriteString(" */\n\n")

	for i, e := range errs {
		if i == MaxReportedErrors {
			fmt.Fprintf(&b, "// ... %d more not shown\n", len(errs)-MaxReportedErrors)
			break
		}
		fmt.Fprintf(&b, "// ERROR #%d [%s]\n", i+1, e.Category)
		b.WriteString("// " + strings.Repeat("-", 50) + "\n")
		if e.File != "" {
			fmt.Fprintf(&b, "// Error in %s:%d\n", e.File, e.Line)
		}
		fmt.Fprintf(&b, "// Confidence: %.0f%%\n", e.Confidence*100)
		fmt.Fprintf(&b, "// Message: %s\n", e.Message)
		fmt.Fprintf(&b, "// Solution: %s\n\n\n", e.Solution)
	}
	return b.String()
}

func (p *Provider) interpretErrors(ctx context.Context) (string, error) {
	if p.projectPath == "" {
		return "// No project path configured", nil
	}
	lines, err := ExtractCompileErrors(ctx, p.projectPath)
	if err != nil {
		return "", err
	}
	errs := make([]CompileError, len(lines))
	for i, l := range lines {
		errs[i] = InterpretError(l)
	}
	return ErrorReport(errs), nil
}
