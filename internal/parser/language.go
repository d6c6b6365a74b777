package parser

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language represents a supported programming language.
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
	LanguageJava       Language = "java"
	LanguageC          Language = "c"
	LanguageCPP        Language = "cpp"
	LanguageCSharp     Language = "csharp"
	LanguageGo         Language = "go"
	LanguageRust       Language = "rust"
	LanguageHTML       Language = "html"
	LanguageCSS        Language = "css"
)

type languageSpec struct {
	grammar    func() *sitter.Language
	extensions []string
}

var languages = map[Language]languageSpec{
	LanguagePython:     {python.GetLanguage, []string{".py", ".pyw", ".pyi"}},
	LanguageJavaScript: {javascript.GetLanguage, []string{".js", ".jsx", ".mjs", ".cjs"}},
	LanguageTypeScript: {typescript.GetLanguage, []string{".ts", ".mts", ".cts"}},
	LanguageTSX:        {tsx.GetLanguage, []string{".tsx"}},
	LanguageJava:       {java.GetLanguage, []string{".java"}},
	LanguageC:          {c.GetLanguage, []string{".c", ".h"}},
	LanguageCPP:        {cpp.GetLanguage, []string{".cpp", ".cc", ".cxx", ".c++", ".hpp", ".hh", ".hxx", ".h++"}},
	LanguageCSharp:     {csharp.GetLanguage, []string{".cs"}},
	LanguageGo:         {golang.GetLanguage, []string{".go"}},
	LanguageRust:       {rust.GetLanguage, []string{".rs"}},
	LanguageHTML:       {html.GetLanguage, []string{".html", ".htm", ".xhtml"}},
	LanguageCSS:        {css.GetLanguage, []string{".css"}},
}

var extensionIndex = buildExtensionIndex()

func buildExtensionIndex() map[string]Language {
	index := make(map[string]Language)
	for lang, spec := range languages {
		for _, ext := range spec.extensions {
			index[ext] = lang
		}
	}
	return index
}

// LanguageForExtension resolves a file extension (with leading dot, any case).
func LanguageForExtension(ext string) (Language, bool) {
	lang, ok := extensionIndex[strings.ToLower(ext)]
	return lang, ok
}

// DetectLanguage determines language from file extension.
func DetectLanguage(filePath string) (Language, bool) {
	return LanguageForExtension(filepath.Ext(filePath))
}

// Extensions returns every extension with a registered grammar, sorted.
func Extensions() []string {
	return slices.Sorted(maps.Keys(extensionIndex))
}
