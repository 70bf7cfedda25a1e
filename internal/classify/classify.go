// Package classify implements the snippet tagging engine: a fixed,
// auditable rule table that infers descriptive tags from raw code text and
// a declared language.
//
// The engine is intentionally shallow — substring and regular-expression
// heuristics, not parsing or analysis. Every rule is an independent boolean
// predicate over the lowercased code; a matching rule contributes one or
// more fixed tags. Rules never short-circuit each other, and the result is
// a deduplicated, sorted set, so evaluation order can never leak into the
// stored tags.
//
// Two tiers share one interpreter:
//
//   - generic rules, evaluated for every snippet regardless of language
//   - language rules, keyed by the declared language value
//
// Infer is deterministic and total: it never fails, and unrecognised
// language values simply skip the language tier.
package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rajnsunny/SnipStash/internal/model"
)

// rule pairs a predicate over the lowercased code text with the tags it
// contributes when the predicate holds.
type rule struct {
	matches func(code string) bool
	tags    []string
}

var (
	forParenRe  = regexp.MustCompile(`for\s*\(`)
	namedFuncRe = regexp.MustCompile(`(\w+)\s*\([^)]*\)\s*\{`)
	arrowFuncRe = regexp.MustCompile(`\w+\s*=\s*\([^)]*\)\s*=>`)
	numListRe   = regexp.MustCompile(`\[\s*\d`)
)

// controlKeywords are identifiers that look like a call followed by a block
// but are really control flow. Without this check, `for (let i=0;...;) {`
// would satisfy the named-function pattern and every loop would also be
// tagged "function".
var controlKeywords = map[string]bool{
	"for":    true,
	"while":  true,
	"if":     true,
	"switch": true,
	"catch":  true,
	"return": true,
}

// namedFunction reports whether the code contains something shaped like a
// function definition: an identifier, a parameter list, an opening brace —
// excluding control-flow keywords.
func namedFunction(code string) bool {
	for _, m := range namedFuncRe.FindAllStringSubmatch(code, -1) {
		if !controlKeywords[m[1]] {
			return true
		}
	}
	return false
}

// containsAny reports whether code contains at least one of the substrings.
func containsAny(code string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(code, s) {
			return true
		}
	}
	return false
}

// containsAll reports whether code contains every one of the substrings.
func containsAll(code string, subs ...string) bool {
	for _, s := range subs {
		if !strings.Contains(code, s) {
			return false
		}
	}
	return true
}

// genericRules are evaluated for every snippet, whatever its language.
var genericRules = []rule{
	{
		// Loop constructs in any mainstream surface syntax.
		matches: func(c string) bool {
			return containsAny(c, "for ", "while ", "foreach") || forParenRe.MatchString(c)
		},
		tags: []string{"loop"},
	},
	{
		matches: func(c string) bool { return containsAny(c, "switch", "case") },
		tags:    []string{"conditional"},
	},
	{
		matches: func(c string) bool { return containsAll(c, "try", "catch") },
		tags:    []string{"error-handling"},
	},
	{
		// Function definitions: keyword forms, a named definition, or an
		// arrow-function assignment.
		matches: func(c string) bool {
			return containsAny(c, "function ", "def ", "fun ") ||
				namedFunction(c) ||
				arrowFuncRe.MatchString(c)
		},
		tags: []string{"function"},
	},
	{
		matches: func(c string) bool { return strings.Contains(c, "class ") },
		tags:    []string{"oop"},
	},
	{
		// HTTP/network call idioms across ecosystems. One hit contributes
		// both tags.
		matches: func(c string) bool {
			return containsAny(c,
				"fetch(", "axios.", "http.", "request(",
				"xmlhttprequest", "ajax", "requests.", "curl ")
		},
		tags: []string{"api", "network"},
	},
	{
		matches: func(c string) bool {
			return containsAny(c,
				"console.log", "print(", "system.out.print",
				"debug", "fmt.println", "echo ")
		},
		tags: []string{"debugging"},
	},
	{
		matches: func(c string) bool {
			return containsAny(c, "array", "list") ||
				containsAll(c, "[", "]") ||
				numListRe.MatchString(c)
		},
		tags: []string{"arrays"},
	},
	{
		matches: func(c string) bool {
			return containsAny(c, "map", "hashmap", "dictionary") ||
				containsAll(c, "{", "}", ":")
		},
		tags: []string{"objects"},
	},
}

// The JS/TS and compiled-language rule sets are shared between languages,
// so they're defined once and referenced from the table.
var (
	jsRules = []rule{
		{
			matches: func(c string) bool {
				return containsAny(c, ".map(", ".filter(", ".reduce(", ".foreach(")
			},
			tags: []string{"array-methods"},
		},
		{
			matches: func(c string) bool { return containsAll(c, "async", "await") },
			tags:    []string{"async"},
		},
		{
			matches: func(c string) bool { return strings.Contains(c, "promise") },
			tags:    []string{"promise"},
		},
		{
			matches: func(c string) bool {
				return containsAny(c, "component", "props", "usestate", "useeffect")
			},
			tags: []string{"react"},
		},
	}

	cFamilyRules = []rule{
		{
			matches: func(c string) bool {
				return containsAny(c, "public static void main", "namespace", "#include")
			},
			tags: []string{"entry-point"},
		},
	}

	shellRules = []rule{
		{
			matches: func(c string) bool { return containsAny(c, "echo ", "if ", "fi") },
			tags:    []string{"scripting"},
		},
		{
			matches: func(c string) bool { return containsAny(c, "curl ", "wget ") },
			tags:    []string{"network"},
		},
	}
)

// always is a predicate that holds for any input. Used by the "other"
// language fallback, which unconditionally contributes "general".
func always(string) bool { return true }

// languageRules maps each language value to its ecosystem-specific rules.
// A language with no entry simply contributes nothing beyond the generic
// tier.
var languageRules = map[model.Language][]rule{
	model.LangJavaScript: jsRules,
	model.LangTypeScript: jsRules,
	model.LangPython: {
		{
			matches: func(c string) bool {
				return containsAny(c, "pandas", "matplotlib", "numpy")
			},
			tags: []string{"data-science"},
		},
		{
			matches: func(c string) bool { return containsAll(c, "self.", "__init__") },
			tags:    []string{"oop"},
		},
	},
	model.LangJava:   cFamilyRules,
	model.LangCSharp: cFamilyRules,
	model.LangCPP:    cFamilyRules,
	model.LangGo: {
		{
			matches: func(c string) bool { return containsAll(c, "package main", "func main") },
			tags:    []string{"entry-point"},
		},
	},
	model.LangRust: {
		{
			matches: func(c string) bool { return strings.Contains(c, "fn main") },
			tags:    []string{"entry-point"},
		},
	},
	model.LangPHP: {
		{
			matches: func(c string) bool { return containsAny(c, "<?php", "echo ") },
			tags:    []string{"web-dev"},
		},
	},
	model.LangRuby: {
		{
			matches: func(c string) bool { return containsAll(c, "def ", "end") },
			tags:    []string{"scripting"},
		},
	},
	model.LangSwift: {
		{
			matches: func(c string) bool { return containsAny(c, "import swiftui", "func ") },
			tags:    []string{"ios"},
		},
	},
	model.LangKotlin: {
		{
			matches: func(c string) bool { return containsAny(c, "fun ", "val ", "var ") },
			tags:    []string{"android"},
		},
	},
	model.LangHTML: {
		{
			matches: func(c string) bool { return containsAny(c, "<html", "<div", "<span") },
			tags:    []string{"markup", "web-dev"},
		},
	},
	model.LangCSS: {
		{
			matches: func(c string) bool { return containsAny(c, "color:", "font-size:", "margin:") },
			tags:    []string{"styling"},
		},
	},
	model.LangSQL: {
		{
			matches: func(c string) bool {
				return containsAny(c, "select", "insert", "update", "delete")
			},
			tags: []string{"database"},
		},
	},
	model.LangBash:       shellRules,
	model.LangPowerShell: shellRules,
	model.LangOther: {
		{matches: always, tags: []string{"general"}},
	},
}

// Infer analyses code and returns the inferred tag set for it.
//
// The result is deduplicated and sorted; identical inputs always produce
// identical output. Infer never fails — any text input is acceptable, and
// a language outside the enumeration just skips the language tier.
func Infer(code string, lang model.Language) []string {
	lower := strings.ToLower(code)

	set := make(map[string]struct{})
	evaluate(genericRules, lower, set)
	evaluate(languageRules[lang], lower, set)

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// evaluate runs every rule in the table against the lowercased code,
// adding contributed tags to the set. All rules run: a later rule is never
// skipped because an earlier one matched.
func evaluate(rules []rule, lower string, set map[string]struct{}) {
	for _, r := range rules {
		if r.matches(lower) {
			for _, t := range r.tags {
				set[t] = struct{}{}
			}
		}
	}
}
