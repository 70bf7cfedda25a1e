package model

// Language is the declared programming language of a snippet.
//
// The set is closed — these exact spellings are part of the API contract
// (clients send them as the `programmingLanguage` field). Anything outside
// the set is a validation error, with "other" as the catch-all for
// languages we don't recognise.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangJava       Language = "java"
	LangCSharp     Language = "csharp"
	LangCPP        Language = "cpp"
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangPHP        Language = "php"
	LangRuby       Language = "ruby"
	LangSwift      Language = "swift"
	LangKotlin     Language = "kotlin"
	LangHTML       Language = "html"
	LangCSS        Language = "css"
	LangSQL        Language = "sql"
	LangBash       Language = "bash"
	LangPowerShell Language = "powershell"
	LangOther      Language = "other"
)

// Languages lists every valid language value, in the order the API
// documents them. Useful for validation messages and CLI help output.
var Languages = []Language{
	LangJavaScript, LangTypeScript, LangPython, LangJava, LangCSharp,
	LangCPP, LangGo, LangRust, LangPHP, LangRuby, LangSwift, LangKotlin,
	LangHTML, LangCSS, LangSQL, LangBash, LangPowerShell, LangOther,
}

// Valid reports whether l is one of the enumerated language values.
func (l Language) Valid() bool {
	for _, v := range Languages {
		if l == v {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (l Language) String() string { return string(l) }
