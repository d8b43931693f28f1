package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"cilisp/interpreter-go/pkg/ast"
)

// Document is a decoded AST document: the program root plus custom operator definitions.
type Document struct {
	Path      string                    `json:"-"`
	Functions []*ast.FunctionDefinition `json:"functions,omitempty"`
	Program   ast.Node                  `json:"program"`
}

// Release tears down every tree the document owns.
func (d *Document) Release() int {
	if d == nil {
		return 0
	}
	released := ast.Release(d.Program)
	for _, def := range d.Functions {
		released += ast.ReleaseFunction(def)
	}
	d.Program = nil
	d.Functions = nil
	return released
}

// LoadDocument reads and decodes a YAML or JSON AST document from disk.
func LoadDocument(path string) (*Document, error) {
	if path == "" {
		return nil, fmt.Errorf("document: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("document: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return DecodeDocument(file, abs)
}

// DecodeDocument decodes a document from r. path is only used for error locations.
func DecodeDocument(r io.Reader, path string) (*Document, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DocumentError{Message: "empty document", Location: DiagnosticLocation{Path: path}}
		}
		return nil, &DocumentError{Message: "invalid YAML", Location: DiagnosticLocation{Path: path}, Err: err}
	}
	d := &documentDecoder{path: path, active: make(map[*yaml.Node]struct{})}
	return d.decodeDocument(&root)
}

// MaxDocumentNodes caps the number of AST nodes one document may expand to, counting every
// alias expansion separately.
const MaxDocumentNodes = 100000

type documentDecoder struct {
	path    string
	active  map[*yaml.Node]struct{}
	decoded int
}

func (d *documentDecoder) errorf(n *yaml.Node, format string, args ...any) error {
	loc := DiagnosticLocation{Path: d.path}
	if n != nil {
		loc.Line = n.Line
		loc.Column = n.Column
	}
	return &DocumentError{Message: fmt.Sprintf(format, args...), Location: loc}
}

func (d *documentDecoder) wrap(n *yaml.Node, err error, format string, args ...any) error {
	docErr := d.errorf(n, format, args...).(*DocumentError)
	docErr.Err = err
	return docErr
}

func spanOf(n *yaml.Node) ast.Span {
	return ast.PointSpan(n.Line, n.Column)
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// mappingFields indexes a mapping node by key, rejecting duplicates and unknown keys.
func (d *documentDecoder) mappingFields(n *yaml.Node, what string, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "%s must be a mapping", what)
	}
	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for idx := 0; idx+1 < len(n.Content); idx += 2 {
		key, value := n.Content[idx], n.Content[idx+1]
		if key.Kind != yaml.ScalarNode {
			return nil, d.errorf(key, "%s keys must be strings", what)
		}
		if !containsString(allowed, key.Value) {
			return nil, d.errorf(key, "unknown %s key %q (expected one of %s)", what, key.Value, strings.Join(allowed, ", "))
		}
		if _, dup := fields[key.Value]; dup {
			return nil, d.errorf(key, "duplicate %s key %q", what, key.Value)
		}
		fields[key.Value] = resolveAlias(value)
	}
	return fields, nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func (d *documentDecoder) decodeDocument(root *yaml.Node) (*Document, error) {
	body := root
	if body.Kind == yaml.DocumentNode {
		if len(body.Content) == 0 {
			return nil, d.errorf(body, "empty document")
		}
		body = body.Content[0]
	}
	fields, err := d.mappingFields(resolveAlias(body), "document", "program", "functions")
	if err != nil {
		return nil, err
	}
	doc := &Document{Path: d.path}
	if fnNode, ok := fields["functions"]; ok {
		if fnNode.Kind != yaml.SequenceNode {
			return nil, d.errorf(fnNode, "functions must be a list")
		}
		seen := make(map[string]*yaml.Node)
		for _, item := range fnNode.Content {
			def, err := d.decodeFunction(resolveAlias(item))
			if err != nil {
				return nil, err
			}
			if prev, dup := seen[def.Name]; dup {
				return nil, d.errorf(item, "function %s already defined at line %d", def.Name, prev.Line)
			}
			seen[def.Name] = item
			doc.Functions = append(doc.Functions, def)
		}
	}
	programNode, ok := fields["program"]
	if !ok {
		return nil, d.errorf(body, "document has no program")
	}
	program, err := d.decodeNode(programNode)
	if err != nil {
		return nil, err
	}
	doc.Program = program
	return doc, nil
}

func (d *documentDecoder) decodeFunction(n *yaml.Node) (*ast.FunctionDefinition, error) {
	fields, err := d.mappingFields(n, "function", "name", "params", "body")
	if err != nil {
		return nil, err
	}
	name, err := d.scalarString(fields, n, "name", "function")
	if err != nil {
		return nil, err
	}
	if ast.IsBuiltinOperator(name) {
		return nil, d.errorf(fields["name"], "function name %s is reserved by a builtin operator", name)
	}
	var params []*ast.Parameter
	if paramsNode, ok := fields["params"]; ok {
		if paramsNode.Kind != yaml.SequenceNode {
			return nil, d.errorf(paramsNode, "params must be a list")
		}
		seen := make(map[string]struct{})
		for _, item := range paramsNode.Content {
			param, err := d.decodeParameter(resolveAlias(item))
			if err != nil {
				return nil, err
			}
			if _, dup := seen[param.Name]; dup {
				return nil, d.errorf(item, "duplicate parameter %s in function %s", param.Name, name)
			}
			seen[param.Name] = struct{}{}
			params = append(params, param)
		}
	}
	bodyNode, ok := fields["body"]
	if !ok {
		return nil, d.errorf(n, "function %s has no body", name)
	}
	body, err := d.decodeNode(bodyNode)
	if err != nil {
		return nil, err
	}
	def := ast.NewFunctionDefinition(name, params, body)
	ast.SetDefinitionSpan(def, spanOf(n))
	return def, nil
}

// decodeParameter accepts either a bare name or {name, type}.
func (d *documentDecoder) decodeParameter(n *yaml.Node) (*ast.Parameter, error) {
	if n.Kind == yaml.ScalarNode {
		if n.Value == "" {
			return nil, d.errorf(n, "parameter name must not be empty")
		}
		return ast.Param(n.Value, ast.NoType), nil
	}
	fields, err := d.mappingFields(n, "parameter", "name", "type")
	if err != nil {
		return nil, err
	}
	name, err := d.scalarString(fields, n, "name", "parameter")
	if err != nil {
		return nil, err
	}
	declared, err := d.declaredType(fields)
	if err != nil {
		return nil, err
	}
	return ast.Param(name, declared), nil
}

var nodeKeys = []string{"int", "double", "call", "args", "ref", "if", "then", "else", "let"}

// decodeNode builds the node bottom-up through the ast constructors.
func (d *documentDecoder) decodeNode(n *yaml.Node) (ast.Node, error) {
	n = resolveAlias(n)
	if n == nil {
		return nil, d.errorf(nil, "missing node")
	}
	if _, cyclic := d.active[n]; cyclic {
		return nil, d.errorf(n, "alias refers to an enclosing node")
	}
	d.decoded++
	if d.decoded > MaxDocumentNodes {
		return nil, d.errorf(n, "document expands to more than %d nodes", MaxDocumentNodes)
	}
	d.active[n] = struct{}{}
	defer delete(d.active, n)

	if n.Kind == yaml.ScalarNode {
		return d.decodeNumberShorthand(n)
	}
	fields, err := d.mappingFields(n, "node", nodeKeys...)
	if err != nil {
		return nil, err
	}

	var forms []string
	for _, key := range []string{"int", "double", "call", "ref", "if"} {
		if _, ok := fields[key]; ok {
			forms = append(forms, key)
		}
	}
	if len(forms) != 1 {
		return nil, d.errorf(n, "node must have exactly one of int, double, call, ref, if (found %d)", len(forms))
	}
	form := forms[0]
	if _, ok := fields["args"]; ok && form != "call" {
		return nil, d.errorf(fields["args"], "args is only valid on call nodes")
	}
	if _, ok := fields["let"]; ok && form == "ref" {
		return nil, d.errorf(fields["let"], "let is not valid on ref nodes")
	}
	for _, key := range []string{"then", "else"} {
		if _, ok := fields[key]; ok && form != "if" {
			return nil, d.errorf(fields[key], "%s is only valid on if nodes", key)
		}
	}

	var node ast.Node
	switch form {
	case "int", "double":
		typ := ast.IntType
		if form == "double" {
			typ = ast.DoubleType
		}
		value, err := d.number(fields[form])
		if err != nil {
			return nil, err
		}
		node = ast.NewNumber(value, typ)
	case "call":
		name, err := d.scalarString(fields, n, "call", "call")
		if err != nil {
			return nil, err
		}
		var operands []ast.Node
		if argsNode, ok := fields["args"]; ok {
			if argsNode.Kind != yaml.SequenceNode {
				return nil, d.errorf(argsNode, "args must be a list")
			}
			for _, item := range argsNode.Content {
				operand, err := d.decodeNode(item)
				if err != nil {
					return nil, err
				}
				operands = append(operands, operand)
			}
		}
		node = ast.NewOperator(name, operands...)
	case "ref":
		name, err := d.scalarString(fields, n, "ref", "ref")
		if err != nil {
			return nil, err
		}
		node = ast.NewVariableRef(name)
	case "if":
		thenNode, okThen := fields["then"]
		elseNode, okElse := fields["else"]
		if !okThen || !okElse {
			return nil, d.errorf(n, "if nodes require both then and else")
		}
		cond, err := d.decodeNode(fields["if"])
		if err != nil {
			return nil, err
		}
		then, err := d.decodeNode(thenNode)
		if err != nil {
			return nil, err
		}
		els, err := d.decodeNode(elseNode)
		if err != nil {
			return nil, err
		}
		node = ast.NewConditional(cond, then, els)
	}
	ast.SetSpan(node, spanOf(n))

	if letNode, ok := fields["let"]; ok {
		scope, err := d.decodeScope(letNode)
		if err != nil {
			return nil, err
		}
		if _, err := ast.AttachScope(scope, node); err != nil {
			return nil, d.wrap(letNode, err, "cannot attach let bindings")
		}
	}
	return node, nil
}

func (d *documentDecoder) decodeScope(n *yaml.Node) (*ast.Scope, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "let must be a list of bindings")
	}
	scope := ast.NewScope()
	for _, item := range n.Content {
		item = resolveAlias(item)
		fields, err := d.mappingFields(item, "binding", "name", "type", "value")
		if err != nil {
			return nil, err
		}
		name, err := d.scalarString(fields, item, "name", "binding")
		if err != nil {
			return nil, err
		}
		declared, err := d.declaredType(fields)
		if err != nil {
			return nil, err
		}
		valueNode, ok := fields["value"]
		if !ok {
			return nil, d.errorf(item, "binding %s has no value", name)
		}
		value, err := d.decodeNode(valueNode)
		if err != nil {
			return nil, err
		}
		scope.Add(ast.NewBinding(name, declared, value))
	}
	return scope, nil
}

func (d *documentDecoder) decodeNumberShorthand(n *yaml.Node) (ast.Node, error) {
	value, err := d.number(n)
	if err != nil {
		return nil, err
	}
	typ := ast.DoubleType
	if n.ShortTag() == "!!int" {
		typ = ast.IntType
	}
	node := ast.NewNumber(value, typ)
	ast.SetSpan(node, spanOf(n))
	return node, nil
}

func (d *documentDecoder) number(n *yaml.Node) (float64, error) {
	if n.Kind != yaml.ScalarNode {
		return 0, d.errorf(n, "expected a number")
	}
	switch n.ShortTag() {
	case "!!int", "!!float":
	default:
		return 0, d.errorf(n, "expected a number, got %q", n.Value)
	}
	var value float64
	if err := n.Decode(&value); err != nil {
		parsed, perr := strconv.ParseFloat(n.Value, 64)
		if perr != nil {
			return 0, d.wrap(n, err, "invalid number %q", n.Value)
		}
		value = parsed
	}
	return value, nil
}

func (d *documentDecoder) scalarString(fields map[string]*yaml.Node, parent *yaml.Node, key, what string) (string, error) {
	n, ok := fields[key]
	if !ok {
		return "", d.errorf(parent, "%s requires %s", what, key)
	}
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" || strings.TrimSpace(n.Value) == "" {
		return "", d.errorf(n, "%s %s must be a non-empty string", what, key)
	}
	return n.Value, nil
}

func (d *documentDecoder) declaredType(fields map[string]*yaml.Node) (ast.NumberType, error) {
	n, ok := fields["type"]
	if !ok {
		return ast.NoType, nil
	}
	if n.Kind != yaml.ScalarNode {
		return ast.NoType, d.errorf(n, "type must be int or double")
	}
	declared, err := ast.ParseNumberType(n.Value)
	if err != nil {
		return ast.NoType, d.wrap(n, err, "invalid type")
	}
	return declared, nil
}
