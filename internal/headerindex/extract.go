package headerindex

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

var (
	classRe  = regexp.MustCompile(`class\s+\w+_API\s+(\w+)\s*:\s*public`)
	methodRe = regexp.MustCompile(`\s+(\w+)\s*\([^)]*\)\s*(?:const)?\s*(?:override)?\s*;`)
)

// ExtractSymbols finds exported class declarations in a header and, for
// each, the declaration-only methods that follow it in the file. This is
// a textual heuristic: methods of a later class are attributed to every
// earlier class in the same file as well.
//
// A class declared twice keeps the later method set. Classes without any
// accepted method are left out.
func ExtractSymbols(content string) map[string][]string {
	out := make(map[string][]string)
	for _, loc := range classRe.FindAllStringSubmatchIndex(content, -1) {
		class := content[loc[2]:loc[3]]
		methods := extractMethods(content[loc[1]:], class)
		if len(methods) > 0 {
			out[class] = methods
		}
	}
	return out
}

func extractMethods(body, class string) []string {
	var methods []string
	for _, m := range methodRe.FindAllStringSubmatch(body, -1) {
		if acceptMethod(m[1], class) {
			methods = append(methods, m[1])
		}
	}
	return methods
}

func acceptMethod(name, class string) bool {
	if name == "" || name == class || name == "operator" || name[0] == '~' {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
