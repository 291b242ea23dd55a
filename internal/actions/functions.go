package actions

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Function is a function declaration or definition found in C++ text.
type Function struct {
	Class      string // set for out-of-class definitions (Class::Name)
	Name       string
	ReturnType string
	Params     []string
	// StartLine and EndLine are zero-based and inclusive.
	StartLine int
	EndLine   int
	// Body is true for definitions, false for declarations.
	Body bool
}

var (
	// [specifiers] <return type> [Class::]Name(params) [const] [override] ; or {
	functionRe = regexp.MustCompile(`(?m)^[ \t]*((?:(?:virtual|static|inline|FORCEINLINE|explicit)[ \t]+)*)` +
		`((?:const[ \t]+)?[A-Za-z_][\w:<>,\*&]*(?:[ \t]*[\*&]+)?)[ \t]+[\*&]?` +
		`(?:(\w+)::)?(\w+)[ \t]*\(([^)]*)\)[ \t]*(?:const[ \t]*)?(?:override[ \t]*)?(?:final[ \t]*)?\s*([;{])`)

	notTypes = map[string]bool{"return": true, "else": true, "new": true, "delete": true, "case": true, "throw": true, "goto": true}
	notNames = map[string]bool{"if": true, "for": true, "while": true, "switch": true, "catch": true, "sizeof": true}
)

// FindFunctions lists the function declarations and definitions in content
// in source order. The matcher is line-oriented and deliberately shallow;
// it does not understand templates spanning lines or macros that expand
// to declarations.
func FindFunctions(content string) []Function {
	var out []Function
	for _, m := range functionRe.FindAllStringSubmatchIndex(content, -1) {
		ret := strings.TrimSpace(content[m[4]:m[5]])
		name := content[m[8]:m[9]]
		if notTypes[firstWord(ret)] || notNames[name] {
			continue
		}
		f := Function{
			Name:       name,
			ReturnType: normalizeSpace(ret),
			Params:     splitParams(content[m[10]:m[11]]),
			StartLine:  strings.Count(content[:m[0]], "\n"),
			EndLine:    strings.Count(content[:m[1]], "\n"),
			Body:       content[m[12]:m[13]] == "{",
		}
		if m[6] >= 0 {
			f.Class = content[m[6]:m[7]]
		}
		out = append(out, f)
	}
	return out
}

// FunctionAt returns the function whose signature spans line.
func FunctionAt(content string, line int) (Function, bool) {
	for _, f := range FindFunctions(content) {
		if f.StartLine <= line && line <= f.EndLine {
			return f, true
		}
	}
	return Function{}, false
}

// BlueprintWrapper renders a BlueprintCallable forwarding wrapper for f.
func BlueprintWrapper(f Function) string {
	var b strings.Builder
	b.WriteString("UFUNCTION(BlueprintCallable, Category = \"Gameplay\")\n")
	fmt.Fprintf(&b, "%s Blueprint_%s(%s)\n{\n", f.ReturnType, f.Name, strings.Join(f.Params, ", "))
	fmt.Fprintf(&b, "\t// Blueprint wrapper for %s\n", f.Name)

	names := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		names = append(names, paramName(p))
	}
	call := f.Name + "(" + strings.Join(names, ", ") + ");"
	if f.ReturnType == "void" {
		b.WriteString("\t" + call + "\n}\n")
	} else {
		b.WriteString("\treturn " + call + "\n}\n")
	}
	return b.String()
}

func (p *Provider) generateBlueprintFunction(params Params) (string, error) {
	path := uriPath(params.TextDocument.URI)
	if path == "" {
		return "// No function found at current position", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("actions: read %s: %w", path, err)
	}
	f, ok := FunctionAt(string(data), params.Position.Line)
	if !ok {
		return "// No function found at current position", nil
	}
	return BlueprintWrapper(f), nil
}

// splitParams splits a parameter list on top-level commas.
func splitParams(s string) []string {
	var out []string
	depth := 0
	start := 0
	flush := func(end int) {
		p := normalizeSpace(s[start:end])
		if p != "" && p != "void" {
			out = append(out, p)
		}
	}
	for i, r := range s {
		switch r {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(s))
	return out
}

// paramName extracts the variable name from "const FVector& Location = X".
func paramName(param string) string {
	if i := strings.Index(param, "="); i >= 0 {
		param = param[:i]
	}
	param = strings.TrimSpace(param)
	if i := strings.LastIndexAny(param, " \t*&"); i >= 0 {
		param = param[i+1:]
	}
	return param
}

// stripDefault removes a default argument from a parameter.
func stripDefault(param string) string {
	if i := strings.Index(param, "="); i >= 0 {
		return strings.TrimSpace(param[:i])
	}
	return param
}

func firstWord(s string) string {
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i]
	}
	return s
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
