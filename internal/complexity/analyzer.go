package complexity

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/huangsam/timemachine/schema"
)

// anonymous names functions that have no identifier of their own.
const anonymous = "(anonymous)"

// Analyzer computes line counts and cyclomatic complexity per function.
type Analyzer struct {
	registry *Registry
}

// NewAnalyzer creates an analyzer backed by the given registry.
func NewAnalyzer(r *Registry) *Analyzer {
	return &Analyzer{registry: r}
}

// Analyze parses src and measures it. If no grammar is registered for the
// file, it returns a nil report and a nil error.
func (a *Analyzer) Analyze(path string, src []byte) (*schema.ComplexityReport, error) {
	spec, lang := a.registry.Lookup(path)
	if spec == nil {
		return nil, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(spec.Language)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s as %s: %w", path, lang, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	report := &schema.ComplexityReport{NLOC: countNLOC(root, src, spec)}
	collectFunctions(root, src, spec, &report.Functions)
	return report, nil
}

// collectFunctions appends every function under n in source order.
func collectFunctions(n *sitter.Node, src []byte, spec *LanguageSpec, out *[]schema.FunctionComplexity) {
	if isFunction(n, spec) {
		*out = append(*out, schema.FunctionComplexity{
			Name:       functionName(n, src),
			StartLine:  int(n.StartPoint().Row) + 1,
			EndLine:    int(n.EndPoint().Row) + 1,
			Cyclomatic: 1 + countDecisions(n, src, spec, true),
		})
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectFunctions(n.Child(i), src, spec, out)
	}
}

// countDecisions counts decision points under n. Nested functions are measured on their own.
func countDecisions(n *sitter.Node, src []byte, spec *LanguageSpec, isRoot bool) int {
	if !isRoot && isFunction(n, spec) {
		return 0
	}
	count := 0
	if isDecision(n, spec) {
		count++
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		count += countDecisions(n.Child(i), src, spec, false)
	}
	return count
}

// isFunction matches named nodes only. ECMAScript grammars also emit a bare "function" keyword token.
func isFunction(n *sitter.Node, spec *LanguageSpec) bool {
	return n.IsNamed() && spec.FunctionTypes[n.Type()]
}

func isDecision(n *sitter.Node, spec *LanguageSpec) bool {
	t := n.Type()
	if n.IsNamed() && spec.DecisionTypes[t] {
		return true
	}
	if !spec.BinaryTypes[t] {
		return false
	}
	op := n.ChildByFieldName("operator")
	return op != nil && spec.BooleanOperators[op.Type()]
}

// functionName reads the name field, falling back to the variable an anonymous function is assigned to.
func functionName(n *sitter.Node, src []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Content(src)
	}
	if parent := n.Parent(); parent != nil && parent.Type() == "variable_declarator" {
		if name := parent.ChildByFieldName("name"); name != nil {
			return name.Content(src)
		}
	}
	return anonymous
}

// countNLOC counts the lines holding at least one non-comment token.
func countNLOC(root *sitter.Node, src []byte, spec *LanguageSpec) int {
	lines := make(map[uint32]struct{})
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if spec.CommentTypes[n.Type()] {
			return
		}
		if n.ChildCount() == 0 {
			if n.EndByte() == n.StartByte() || strings.TrimSpace(n.Content(src)) == "" {
				return
			}
			start, end := n.StartPoint(), n.EndPoint()
			last := end.Row
			if end.Column == 0 && end.Row > start.Row {
				last--
			}
			for row := start.Row; row <= last; row++ {
				lines[row] = struct{}{}
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return len(lines)
}
