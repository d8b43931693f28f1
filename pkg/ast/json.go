package ast

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The JSON form mirrors the document format read by the driver: one key selects the
// variant and an optional "let" list carries the node's scope.

type bindingJSON struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Value Node   `json:"value"`
}

type parameterJSON struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

func typeName(t NumberType) string {
	switch t {
	case IntType:
		return "int"
	case DoubleType:
		return "double"
	default:
		return ""
	}
}

func scopeJSON(scope *Scope) []bindingJSON {
	if scope.Len() == 0 {
		return nil
	}
	out := make([]bindingJSON, 0, scope.Len())
	for _, b := range scope.bindings {
		out = append(out, bindingJSON{Name: b.Name, Type: typeName(b.Declared), Value: b.Value})
	}
	return out
}

func numberJSON(v float64) (json.RawMessage, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("ast: cannot encode non-finite number %v", v)
	}
	text := strconv.FormatFloat(v, 'f', -1, 64)
	return json.RawMessage(text), nil
}

// MarshalJSON ensures number literals serialize with their declared type as the key.
func (lit *NumberLiteral) MarshalJSON() ([]byte, error) {
	if lit == nil {
		return []byte("null"), nil
	}
	value, err := numberJSON(lit.Value)
	if err != nil {
		return nil, err
	}
	key := "double"
	if lit.Type == IntType {
		key = "int"
	} else if !strings.ContainsAny(string(value), ".e") {
		value = append(value, ".0"...)
	}
	payload := map[string]any{key: value}
	if let := scopeJSON(lit.scope); let != nil {
		payload["let"] = let
	}
	return json.Marshal(payload)
}

func (call *OperatorCall) MarshalJSON() ([]byte, error) {
	if call == nil {
		return []byte("null"), nil
	}
	payload := struct {
		Call string        `json:"call"`
		Args []Node        `json:"args,omitempty"`
		Let  []bindingJSON `json:"let,omitempty"`
	}{
		Call: call.Name,
		Args: call.Operands,
		Let:  scopeJSON(call.scope),
	}
	return json.Marshal(payload)
}

func (ref *VariableReference) MarshalJSON() ([]byte, error) {
	if ref == nil {
		return []byte("null"), nil
	}
	payload := struct {
		Ref string        `json:"ref"`
		Let []bindingJSON `json:"let,omitempty"`
	}{
		Ref: ref.Name,
		Let: scopeJSON(ref.scope),
	}
	return json.Marshal(payload)
}

func (cond *Conditional) MarshalJSON() ([]byte, error) {
	if cond == nil {
		return []byte("null"), nil
	}
	payload := struct {
		If   Node          `json:"if"`
		Then Node          `json:"then"`
		Else Node          `json:"else"`
		Let  []bindingJSON `json:"let,omitempty"`
	}{
		If:   cond.Condition,
		Then: cond.Then,
		Else: cond.Else,
		Let:  scopeJSON(cond.scope),
	}
	return json.Marshal(payload)
}

func (d *FunctionDefinition) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	params := make([]parameterJSON, 0, len(d.Params))
	for _, p := range d.Params {
		if p == nil {
			continue
		}
		params = append(params, parameterJSON{Name: p.Name, Type: typeName(p.Declared)})
	}
	payload := struct {
		Name   string          `json:"name"`
		Params []parameterJSON `json:"params"`
		Body   Node            `json:"body"`
	}{
		Name:   d.Name,
		Params: params,
		Body:   d.Body,
	}
	return json.Marshal(payload)
}
