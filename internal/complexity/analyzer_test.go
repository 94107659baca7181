package complexity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/timemachine/schema"
)

const goSource = `package p

// Add adds.
func Add(a, b int) int {
	return a + b
}

func Classify(n int) string {
	if n < 0 && n != -1 {
		return "neg"
	}
	for i := 0; i < n; i++ {
		switch {
		case i == 1:
			return "one"
		default:
		}
	}
	return "pos"
}
`

const pySource = `def check(x):
    # classify x
    if x > 0 and x < 10:
        return 1
    elif x == 0:
        return None
    try:
        pass
    except ValueError:
        pass
    return x if x else -x
`

const jsSource = `function outer(a) {
  const inner = (b) => b ?? 0;
  if (a || !a) { return inner(a); }
  return a ? 1 : 2;
}
`

func analyze(t *testing.T, path, src string) *schema.ComplexityReport {
	t.Helper()
	report, err := NewAnalyzer(DefaultRegistry()).Analyze(path, []byte(src))
	require.NoError(t, err)
	require.NotNil(t, report)
	return report
}

func byName(report *schema.ComplexityReport) map[string]schema.FunctionComplexity {
	out := make(map[string]schema.FunctionComplexity, len(report.Functions))
	for _, fn := range report.Functions {
		out[fn.Name] = fn
	}
	return out
}

func TestAnalyze_Go(t *testing.T) {
	report := analyze(t, "pkg/p.go", goSource)

	require.Len(t, report.Functions, 2)
	fns := byName(report)
	assert.Equal(t, 1, fns["Add"].Cyclomatic)
	assert.Equal(t, 4, fns["Add"].StartLine)
	assert.Equal(t, 6, fns["Add"].EndLine)

	// if, &&, for and one non-default case
	assert.Equal(t, 5, fns["Classify"].Cyclomatic)
	assert.Equal(t, 6, report.TotalCCN())

	// Blank and comment lines are not counted
	assert.Equal(t, 17, report.NLOC)
}

func TestAnalyze_Python(t *testing.T) {
	report := analyze(t, "check.py", pySource)

	require.Len(t, report.Functions, 1)
	// if, and, elif, except and the conditional expression
	assert.Equal(t, 6, report.Functions[0].Cyclomatic)
	assert.Equal(t, "check", report.Functions[0].Name)
	assert.Equal(t, 10, report.NLOC)
}

func TestAnalyze_JavaScriptNestedFunctions(t *testing.T) {
	report := analyze(t, "src/outer.js", jsSource)

	require.Len(t, report.Functions, 2)
	fns := byName(report)
	// The nested arrow function's ?? is not charged to outer
	assert.Equal(t, 4, fns["outer"].Cyclomatic)
	assert.Equal(t, 2, fns["inner"].Cyclomatic)
}

func TestAnalyze_FunctionKeywordIsNotAFunction(t *testing.T) {
	tests := map[string]string{
		"decl.js":  "function f(a) {\n  if (a) { return 1 }\n  return 0\n}\n",
		"expr.js":  "const f = function (a) {\n  if (a) { return 1 }\n  return 0\n};\n",
		"decl.ts":  "function f(a: boolean): number {\n  if (a) { return 1 }\n  return 0\n}\n",
		"decl.tsx": "function f(a: boolean) {\n  if (a) { return <b /> }\n  return null\n}\n",
	}
	for path, src := range tests {
		t.Run(path, func(t *testing.T) {
			report := analyze(t, path, src)
			require.Len(t, report.Functions, 1)
			assert.Equal(t, "f", report.Functions[0].Name)
			assert.Equal(t, 2, report.TotalCCN())
		})
	}
}

func TestAnalyze_TypeScriptAndTSX(t *testing.T) {
	ts := analyze(t, "a.ts", "export function f(x: number): number {\n  return x > 0 ? x : -x;\n}\n")
	require.Len(t, ts.Functions, 1)
	assert.Equal(t, 2, ts.Functions[0].Cyclomatic)

	tsx := analyze(t, "App.tsx", "const App = (ok: boolean) => <div>{ok && <span />}</div>;\n")
	require.Len(t, tsx.Functions, 1)
	assert.Equal(t, "App", tsx.Functions[0].Name)
	assert.Equal(t, 2, tsx.Functions[0].Cyclomatic)
}

func TestAnalyze_NoFunctions(t *testing.T) {
	report := analyze(t, "const.go", "package p\n\nconst X = 1\n")
	assert.Empty(t, report.Functions)
	assert.Equal(t, 0, report.TotalCCN())
	assert.Equal(t, 2, report.NLOC)
}

func TestAnalyze_UnsupportedExtension(t *testing.T) {
	report, err := NewAnalyzer(DefaultRegistry()).Analyze("README.md", []byte("# hello"))
	assert.NoError(t, err)
	assert.Nil(t, report)
}

func TestAnalyze_SyntaxErrorsAreTolerated(t *testing.T) {
	report := analyze(t, "broken.go", "package p\n\nfunc F() {\n\tif x {\n")
	assert.NotNil(t, report)
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	spec, lang := r.Lookup("dir/File.PY")
	assert.NotNil(t, spec)
	assert.Equal(t, "python", lang)

	_, lang = r.Lookup("view.tsx")
	assert.Equal(t, "tsx", lang)

	spec, lang = r.Lookup("Makefile")
	assert.Nil(t, spec)
	assert.Empty(t, lang)

	exts := r.Extensions()
	for _, ext := range []string{"go", "py", "js", "jsx", "ts", "tsx"} {
		assert.True(t, exts[ext], ext)
	}
}
