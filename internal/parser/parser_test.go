package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pythonSymbols(t *testing.T, code string) []Symbol {
	t.Helper()
	p, err := NewParser(LanguagePython)
	require.NoError(t, err)
	defer p.Close()

	symbols, err := p.Symbols(context.Background(), []byte(code))
	require.NoError(t, err)
	return symbols
}

func TestParsePythonFunction(t *testing.T) {
	code := `
def hello(name: str) -> str:
    """Greet someone by name."""
    return f"Hello, {name}!"
`
	symbols := pythonSymbols(t, code)

	require.Len(t, symbols, 1)
	assert.Equal(t, "hello", symbols[0].Name)
	assert.Equal(t, SymbolFunction, symbols[0].Kind)
	assert.Equal(t, 2, symbols[0].StartLine)
	assert.Equal(t, 4, symbols[0].EndLine)
	assert.Equal(t, "Greet someone by name.", symbols[0].Docstring)
}

func TestParsePythonClassKeepsMethodsInside(t *testing.T) {
	code := `
class User:
    """Represents a user in the system."""

    def __init__(self, name: str):
        self.name = name

    def greet(self) -> str:
        return f"Hello, {self.name}"
`
	symbols := pythonSymbols(t, code)

	// Methods belong to the class span, not separate symbols
	require.Len(t, symbols, 1)
	assert.Equal(t, "User", symbols[0].Name)
	assert.Equal(t, SymbolClass, symbols[0].Kind)
	assert.Equal(t, "Represents a user in the system.", symbols[0].Docstring)
	assert.Equal(t, 9, symbols[0].EndLine)
}

func TestParsePythonNestedFunctions(t *testing.T) {
	code := `
def outer():
    """Outer function."""
    def inner():
        pass
    return inner
`
	symbols := pythonSymbols(t, code)

	require.Len(t, symbols, 1)
	assert.Equal(t, "outer", symbols[0].Name)
	assert.Contains(t, code[symbols[0].StartByte:symbols[0].EndByte], "def inner")
}

func TestParsePythonDecoratedDefinition(t *testing.T) {
	code := `@dataclass
class Point:
    x: int

@cache
async def load():
    return 1
`
	symbols := pythonSymbols(t, code)

	require.Len(t, symbols, 2)
	assert.Equal(t, "Point", symbols[0].Name)
	assert.Equal(t, SymbolClass, symbols[0].Kind)
	assert.Equal(t, 1, symbols[0].StartLine)
	assert.Equal(t, "load", symbols[1].Name)
	assert.Equal(t, SymbolFunction, symbols[1].Kind)
	assert.Equal(t, 5, symbols[1].StartLine)
}

func TestParsePythonCommentRuns(t *testing.T) {
	code := `# header one
# header two
x = 1

# trailing
`
	symbols := pythonSymbols(t, code)

	require.Len(t, symbols, 2)
	assert.Equal(t, SymbolComment, symbols[0].Kind)
	assert.Equal(t, 1, symbols[0].StartLine)
	assert.Equal(t, 2, symbols[0].EndLine)
	assert.Equal(t, SymbolComment, symbols[1].Kind)
	assert.Equal(t, 5, symbols[1].StartLine)
}

func TestParsePythonInlineCommentsStayWithCode(t *testing.T) {
	code := `x = 1  # inline
# own line
y = 2  # also inline
`
	symbols := pythonSymbols(t, code)

	require.Len(t, symbols, 1)
	assert.Equal(t, SymbolComment, symbols[0].Kind)
	assert.Equal(t, 2, symbols[0].StartLine)
	assert.Equal(t, 2, symbols[0].EndLine)
	assert.Equal(t, "# own line", code[symbols[0].StartByte:symbols[0].EndByte])
}

func TestParsePythonNonStringDocstrings(t *testing.T) {
	code := `
def fmt():
    f"""Formatted {x}."""

def raw():
    b"""Bytes."""
`
	symbols := pythonSymbols(t, code)

	require.Len(t, symbols, 2)
	assert.Empty(t, symbols[0].Docstring)
	assert.Empty(t, symbols[1].Docstring)
}

func TestParsePythonAcceptsPrintStatement(t *testing.T) {
	// The grammar keeps Python 2 print statements, so such files chunk
	// instead of failing.
	symbols := pythonSymbols(t, "print \"hello\"\n\ndef f():\n    pass\n")

	require.Len(t, symbols, 1)
	assert.Equal(t, "f", symbols[0].Name)
}

func TestParsePythonNoDocstring(t *testing.T) {
	code := `
def compute(x):
    y = "not a docstring"
    return x
`
	symbols := pythonSymbols(t, code)

	require.Len(t, symbols, 1)
	assert.Empty(t, symbols[0].Docstring)
}

func TestParsePythonSyntaxError(t *testing.T) {
	p, err := NewParser(LanguagePython)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Symbols(context.Background(), []byte("def broken(:\n    pass\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestSymbolsRequiresPython(t *testing.T) {
	p, err := NewParser(LanguageJavaScript)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Symbols(context.Background(), []byte("function f() {}"))
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestCleanDocstring(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"triple double", `"""Docstring for function."""`, "Docstring for function."},
		{"triple single", `'''Single quoted.'''`, "Single quoted."},
		{"plain string", `"short"`, "short"},
		{"raw prefix", `r"""Raw \d docstring."""`, `Raw \d docstring.`},
		{
			"multiline dedent",
			"\"\"\"Summary line.\n\n    Details indented.\n        More indented.\n    \"\"\"",
			"Summary line.\n\nDetails indented.\n    More indented.",
		},
		{"leading newline", "\"\"\"\n    Starts below.\n    \"\"\"", "Starts below."},
		{"newline escape", `"""Line one\nstill one"""`, "Line one\nstill one"},
		{"quote escapes", `"""Quote \" and \\ backslash."""`, `Quote " and \ backslash.`},
		{"numeric escapes", `"""Caf\xe9 \u2713 \101"""`, "Caf\u00e9 \u2713 A"},
		{"unknown escape kept", `"""Unknown \d stays."""`, `Unknown \d stays.`},
		{"line continuation", "\"\"\"Joined \\\nline.\"\"\"", "Joined line."},
		{"tab stops", `"""Tab\there"""`, "Tab     here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanDocstring(tt.raw))
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path     string
		expected Language
		ok       bool
	}{
		{"test.py", LanguagePython, true},
		{"path/to/file.PY", LanguagePython, true},
		{"test.js", LanguageJavaScript, true},
		{"test.jsx", LanguageJavaScript, true},
		{"test.ts", LanguageTypeScript, true},
		{"test.tsx", LanguageTSX, true},
		{"Sample.java", LanguageJava, true},
		{"sample.cpp", LanguageCPP, true},
		{"sample.h", LanguageC, true},
		{"main.go", LanguageGo, true},
		{"lib.rs", LanguageRust, true},
		{"index.HTML", LanguageHTML, true},
		{"site.css", LanguageCSS, true},
		{"test.txt", "", false},
		{"Makefile", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			lang, ok := DetectLanguage(tc.path)
			assert.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.expected, lang)
			}
		})
	}
}

func TestUnsupportedLanguage(t *testing.T) {
	_, err := NewParser("cobol")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.Contains(t, err.Error(), "unsupported language")
}

func TestExtensionsSorted(t *testing.T) {
	exts := Extensions()
	assert.Contains(t, exts, ".py")
	assert.Contains(t, exts, ".css")
	assert.IsNonDecreasing(t, exts)
}
