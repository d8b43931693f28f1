package ast

import "fmt"

// OperatorKind enumerates the builtin operators plus the Custom marker.
type OperatorKind int

const (
	OperatorNeg OperatorKind = iota
	OperatorAbs
	OperatorExp
	OperatorSqrt
	OperatorAdd
	OperatorSub
	OperatorMult
	OperatorDiv
	OperatorRemainder
	OperatorLog
	OperatorPow
	OperatorMax
	OperatorMin
	OperatorExp2
	OperatorCbrt
	OperatorHypot
	OperatorRead
	OperatorRand
	OperatorPrint
	OperatorEqual
	OperatorLess
	OperatorGreater
	OperatorCustom OperatorKind = 255
)

// OperatorClass groups operators sharing arity and typing rules.
type OperatorClass int

const (
	ClassUnary OperatorClass = iota
	ClassBinary
	ClassFold
	ClassCompare
	ClassPrint
	ClassRead
	ClassRand
	ClassCustom
)

type operatorInfo struct {
	name  string
	class OperatorClass
}

var operatorTable = [...]operatorInfo{
	OperatorNeg:       {"neg", ClassUnary},
	OperatorAbs:       {"abs", ClassUnary},
	OperatorExp:       {"exp", ClassUnary},
	OperatorSqrt:      {"sqrt", ClassUnary},
	OperatorAdd:       {"add", ClassFold},
	OperatorSub:       {"sub", ClassBinary},
	OperatorMult:      {"mult", ClassFold},
	OperatorDiv:       {"div", ClassBinary},
	OperatorRemainder: {"remainder", ClassBinary},
	OperatorLog:       {"log", ClassUnary},
	OperatorPow:       {"pow", ClassBinary},
	OperatorMax:       {"max", ClassBinary},
	OperatorMin:       {"min", ClassBinary},
	OperatorExp2:      {"exp2", ClassUnary},
	OperatorCbrt:      {"cbrt", ClassUnary},
	OperatorHypot:     {"hypot", ClassBinary},
	OperatorRead:      {"read", ClassRead},
	OperatorRand:      {"rand", ClassRand},
	OperatorPrint:     {"print", ClassPrint},
	OperatorEqual:     {"equal", ClassCompare},
	OperatorLess:      {"less", ClassCompare},
	OperatorGreater:   {"greater", ClassCompare},
}

// LookupOperator resolves a builtin operator name.
func LookupOperator(name string) (OperatorKind, bool) {
	for idx, info := range operatorTable {
		if info.name == name {
			return OperatorKind(idx), true
		}
	}
	return OperatorCustom, false
}

// IsBuiltinOperator reports whether name is reserved by the builtin table.
func IsBuiltinOperator(name string) bool {
	_, ok := LookupOperator(name)
	return ok
}

func (k OperatorKind) String() string {
	if k >= 0 && int(k) < len(operatorTable) {
		return operatorTable[k].name
	}
	if k == OperatorCustom {
		return "custom"
	}
	return fmt.Sprintf("unknown_operator_%d", int(k))
}

// Class returns the dispatch class of the operator.
func (k OperatorKind) Class() OperatorClass {
	if k >= 0 && int(k) < len(operatorTable) {
		return operatorTable[k].class
	}
	return ClassCustom
}

// Arity returns the operand count bounds for builtin classes. hi < 0 means unbounded.
// Custom operators take their arity from the resolved definition.
func (c OperatorClass) Arity() (lo int, hi int) {
	switch c {
	case ClassUnary:
		return 1, 1
	case ClassBinary, ClassCompare:
		return 2, 2
	case ClassFold:
		return 2, -1
	case ClassPrint:
		return 1, -1
	case ClassRead, ClassRand:
		return 0, 0
	default:
		return 0, -1
	}
}
