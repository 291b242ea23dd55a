package actions

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LogType classifies a log line.
type LogType int

const (
	LogPerformance LogType = iota
	LogMemory
	LogError
	LogBlueprint
	LogWarning
)

func (t LogType) String() string {
	switch t {
	case LogPerformance:
		return "Performance"
	case LogMemory:
		return "Memory"
	case LogError:
		return "Error"
	case LogBlueprint:
		return "Blueprint"
	case LogWarning:
		return "Warning"
	default:
		return "Unknown"
	}
}

// Severity ranks an issue. Lower values are more severe.
type Severity int

const (
	SeverityCritical Severity = iota
	SeverityHigh
	SeverityMedium
	SeverityLow
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// LogIssue is one matched log line.
type LogIssue struct {
	Type       LogType
	Severity   Severity
	Message    string
	File       string
	Line       int
	Suggestion string
}

type logRule struct {
	typ        LogType
	severity   Severity
	suggestion string
	patterns   []*regexp.Regexp
}

// logRules are tried in order; each rule contributes at most one issue
// per line.
var logRules = []logRule{
	{
		typ:        LogPerformance,
		severity:   SeverityMedium,
		suggestion: "Profile the reported section with Unreal Insights or stat commands",
		patterns: compileAll(
			`LogStats:\s+(.+)\s+took\s+(\d+\.?\d*)ms`,
			`LogRenderer:\s+Frame\s+time:\s+(\d+\.?\d*)ms`,
			`LogGameThread:\s+(.+)\s+(\d+\.?\d*)ms`,
			`LogSlate:\s+Slow\s+widget\s+update.*(\d+\.?\d*)ms`,
		),
	},
	{
		typ:        LogMemory,
		severity:   SeverityHigh,
		suggestion: "Check object lifetimes and UPROPERTY references; run memreport",
		patterns: compileAll(
			`LogMemory:\s+(\d+)\s+bytes\s+leaked`,
			`LogGC:\s+Garbage\s+collection\s+took\s+(\d+\.?\d*)ms`,
			`LogMemory:\s+Out\s+of\s+memory`,
			`LogMemory:\s+Allocation\s+failed.*size:\s+(\d+)`,
		),
	},
	{
		typ:        LogError,
		severity:   SeverityHigh,
		suggestion: "Check the related code section",
		patterns: compileAll(
			`LogTemp:\s+Error:\s+(.+)`,
			`LogCore:\s+Error:\s+(.+)`,
			`LogBlueprint:\s+Error:\s+(.+)`,
			`LogCompile:\s+Error:\s+(.+)`,
			`Error:\s+(.+)`,
		),
	},
	{
		typ:        LogBlueprint,
		severity:   SeverityMedium,
		suggestion: "Open the Blueprint and recompile it to see node-level errors",
		patterns: compileAll(
			`LogBlueprint:\s+(.+)\s+failed\s+to\s+compile`,
			`LogBlueprintUserMessages:\s+(.+)`,
			`LogBlueprint:\s+Warning:\s+(.+)`,
			`Blueprint\s+compile\s+error:\s+(.+)`,
		),
	},
	{
		typ:        LogWarning,
		severity:   SeverityLow,
		suggestion: "Review the warning; it may hide a real problem",
		patterns: compileAll(
			`LogTemp:\s+Warning:\s+(.+)`,
			`LogCore:\s+Warning:\s+(.+)`,
			`Warning:\s+(.+)`,
		),
	},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// criticalRe escalates any matched line to SeverityCritical.
var criticalRe = regexp.MustCompile(`Out\s+of\s+memory|Fatal\s+error`)

// LogDirs are the project-relative directories searched for *.log files.
var LogDirs = []string{
	filepath.Join("Saved", "Logs"),
	filepath.Join("Intermediate", "Build", "Win64", "UnrealHeaderTool", "Development", "Engine", "Logs"),
}

// FindLogFiles returns the *.log files directly inside the project's log
// directories, sorted.
func FindLogFiles(projectPath string) []string {
	var files []string
	for _, dir := range LogDirs {
		matches, err := filepath.Glob(filepath.Join(projectPath, dir, "*.log"))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files
}

// AnalyzeLogLine returns the issues found in one line.
func AnalyzeLogLine(line string) []LogIssue {
	var issues []LogIssue
	for _, rule := range logRules {
		for _, re := range rule.patterns {
			m := re.FindString(line)
			if m == "" {
				continue
			}
			sev := rule.severity
			if criticalRe.MatchString(line) {
				sev = SeverityCritical
			}
			issues = append(issues, LogIssue{
				Type:       rule.typ,
				Severity:   sev,
				Message:    m,
				Suggestion: rule.suggestion,
			})
			break
		}
	}
	return issues
}

// AnalyzeLogFile scans one log file.
func AnalyzeLogFile(ctx context.Context, path string) ([]LogIssue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("actions: open log: %w", err)
	}
	defer f.Close()

	var issues []LogIssue
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	n := 0
	for sc.Scan() {
		n++
		if n%1000 == 0 && ctx.Err() != nil {
			return issues, ctx.Err()
		}
		for _, issue := range AnalyzeLogLine(sc.Text()) {
			issue.File = path
			issue.Line = n
			issues = append(issues, issue)
		}
	}
	if err := sc.Err(); err != nil {
		return issues, fmt.Errorf("actions: scan log: %w", err)
	}
	return issues, nil
}

// LogReport renders issues grouped by severity, most severe first.
func LogReport(issues []LogIssue, generated time.Time) string {
	var b strings.Builder
	b.WriteString("/*\n")
	b.WriteString(" * UNREAL ENGINE LOG ANALYSIS REPORT\n")
	b.WriteString(" * Generated: " + generated.Format(time.RFC3339) + "\n")
	fmt.Fprintf(&b, " * Total Issues Found: %d\n", len(issues))
	b.WriteString(" * ==========================================\n")
	b.WriteString(" */\n\n")

	grouped := make(map[Severity][]LogIssue)
	for _, issue := range issues {
		grouped[issue.Severity] = append(grouped[issue.Severity], issue)
	}
	for _, sev := range []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow} {
		group := grouped[sev]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "// %s SEVERITY ISSUES (%d)\n", sev, len(group))
		b.WriteString("// " + strings.Repeat("=", 50) + "\n")
		for _, issue := range group {
			fmt.Fprintf(&b, "// File: %s:%d\n", issue.File, issue.Line)
			fmt.Fprintf(&b, "// Type: %s, Severity: %s\n", issue.Type, issue.Severity)
			fmt.Fprintf(&b, "// Message: %s\n", issue.Message)
			fmt.Fprintf(&b, "// Suggestion: %s\n\n", issue.Suggestion)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (p *Provider) analyzeLogs(ctx context.Context) (string, error) {
	if p.projectPath == "" {
		return "// No project path configured", nil
	}
	var issues []LogIssue
	for _, path := range FindLogFiles(p.projectPath) {
		found, err := AnalyzeLogFile(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			p.log.Debug("skipping log", zap.String("path", path), zap.Error(err))
		}
		issues = append(issues, found...)
	}
	return LogReport(issues, p.now()), nil
}
