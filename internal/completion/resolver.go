// Package completion turns a typed prefix and its surrounding text into
// completion candidates: reflection macros first, then class members.
package completion

import (
	"sort"
	"strings"

	"github.com/HendryAvila/unreal-lsp/internal/engine"
	"github.com/HendryAvila/unreal-lsp/internal/knowledge"
)

// Candidate kinds, as numbered by LSP CompletionItemKind.
const (
	KindMethod  = 2
	KindSnippet = 15
)

const (
	macroSortPrefix  = "0_"
	memberSortPrefix = "1_"
	scopeSep         = "::"
)

// Candidate is one completion suggestion.
type Candidate struct {
	Label      string `json:"label"`
	InsertText string `json:"insertText"`
	Detail     string `json:"detail"`
	Kind       int    `json:"kind"`
	SortText   string `json:"sortText"`
}

// MethodSource supplies class methods found outside the knowledge base.
type MethodSource interface {
	ClassMethods(class string) []string
}

// KnowledgeBase is the subset of knowledge.Base the resolver reads.
type KnowledgeBase interface {
	ClassMethods(class string, v engine.Version) []string
	MacroTemplate(macro string, v engine.Version) string
}

// Resolver produces candidates for one engine version.
type Resolver struct {
	version engine.Version
	kb      KnowledgeBase
	index   MethodSource
}

// NewResolver creates a resolver. index may be nil.
func NewResolver(v engine.Version, kb KnowledgeBase, index MethodSource) *Resolver {
	return &Resolver{version: v, kb: kb, index: index}
}

// Version returns the engine version the resolver answers for.
func (r *Resolver) Version() engine.Version { return r.version }

// Complete returns candidates for prefix, ordered by sort text. Member
// candidates are only produced when context contains a "::" scope.
func (r *Resolver) Complete(prefix, context string) []Candidate {
	out := r.macroCandidates(prefix)
	if strings.Contains(context, scopeSep) {
		out = append(out, r.memberCandidates(ClassFromContext(context), prefix)...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortText < out[j].SortText })
	return out
}

func (r *Resolver) macroCandidates(prefix string) []Candidate {
	var out []Candidate
	detail := "Unreal Engine " + r.version.String() + " Macro"
	for _, name := range knowledge.MacroNames {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		out = append(out, Candidate{
			Label:      name,
			InsertText: r.kb.MacroTemplate(name, r.version),
			Detail:     detail,
			Kind:       KindSnippet,
			SortText:   macroSortPrefix + name,
		})
	}
	return out
}

func (r *Resolver) memberCandidates(class, prefix string) []Candidate {
	methods := r.kb.ClassMethods(class, r.version)
	if r.index != nil {
		methods = append(methods, r.index.ClassMethods(class)...)
	}

	seen := make(map[string]bool, len(methods))
	var out []Candidate
	for _, m := range methods {
		if seen[m] || !strings.HasPrefix(m, prefix) {
			continue
		}
		seen[m] = true
		out = append(out, Candidate{
			Label:      m,
			InsertText: m,
			Detail:     class + scopeSep + m + " (UE " + r.version.String() + ")",
			Kind:       KindMethod,
			SortText:   memberSortPrefix + m,
		})
	}
	return out
}

// ClassFromContext extracts the class name qualifying the last "::" in
// context: the text before it, after the last space or tab.
func ClassFromContext(context string) string {
	i := strings.LastIndex(context, scopeSep)
	if i < 0 {
		return ""
	}
	class := context[:i]
	if j := strings.LastIndexAny(class, " \t"); j >= 0 {
		class = class[j+1:]
	}
	return class
}
