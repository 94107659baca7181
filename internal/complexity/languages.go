package complexity

import (
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// DefaultRegistry returns a registry with every bundled grammar.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterGo(r)
	RegisterPython(r)
	RegisterJavaScript(r)
	RegisterTypeScript(r)
	return r
}

// RegisterGo adds the Go grammar.
func RegisterGo(r *Registry) {
	r.Register("go", &LanguageSpec{
		Language:   golang.GetLanguage(),
		Extensions: []string{"go"},
		FunctionTypes: set(
			"function_declaration", "method_declaration", "func_literal",
		),
		DecisionTypes: set(
			"if_statement", "for_statement",
			"expression_case", "type_case", "communication_case",
		),
		BinaryTypes:      set("binary_expression"),
		BooleanOperators: set("&&", "||"),
		CommentTypes:     set("comment"),
	})
}

// RegisterPython adds the Python grammar.
func RegisterPython(r *Registry) {
	r.Register("python", &LanguageSpec{
		Language:   python.GetLanguage(),
		Extensions: []string{"py", "pyi"},
		FunctionTypes: set(
			"function_definition", "lambda",
		),
		DecisionTypes: set(
			"if_statement", "elif_clause", "for_statement", "while_statement",
			"except_clause", "conditional_expression", "boolean_operator",
			"for_in_clause", "if_clause", "case_clause",
		),
		CommentTypes: set("comment"),
	})
}

// ecmaDecisions is shared by the JavaScript and TypeScript grammars.
var ecmaDecisions = []string{
	"if_statement", "for_statement", "for_in_statement", "while_statement",
	"do_statement", "switch_case", "catch_clause", "ternary_expression",
}

var ecmaFunctions = []string{
	"function_declaration", "function", "function_expression", "arrow_function",
	"method_definition", "generator_function_declaration", "generator_function",
}

// RegisterJavaScript adds the JavaScript grammar, which also parses JSX.
func RegisterJavaScript(r *Registry) {
	r.Register("javascript", &LanguageSpec{
		Language:         javascript.GetLanguage(),
		Extensions:       []string{"js", "jsx", "mjs", "cjs"},
		FunctionTypes:    set(ecmaFunctions...),
		DecisionTypes:    set(ecmaDecisions...),
		BinaryTypes:      set("binary_expression"),
		BooleanOperators: set("&&", "||", "??"),
		CommentTypes:     set("comment"),
	})
}

// RegisterTypeScript adds the TypeScript and TSX grammars.
func RegisterTypeScript(r *Registry) {
	r.Register("typescript", &LanguageSpec{
		Language:         typescript.GetLanguage(),
		Extensions:       []string{"ts", "mts", "cts"},
		FunctionTypes:    set(ecmaFunctions...),
		DecisionTypes:    set(ecmaDecisions...),
		BinaryTypes:      set("binary_expression"),
		BooleanOperators: set("&&", "||", "??"),
		CommentTypes:     set("comment"),
	})
	r.Register("tsx", &LanguageSpec{
		Language:         tsx.GetLanguage(),
		Extensions:       []string{"tsx"},
		FunctionTypes:    set(ecmaFunctions...),
		DecisionTypes:    set(ecmaDecisions...),
		BinaryTypes:      set("binary_expression"),
		BooleanOperators: set("&&", "||", "??"),
		CommentTypes:     set("comment"),
	})
}
