// Package query models document-store predicates as a small expression
// tree so repositories can compile them and use cases can build them
// without knowing the storage backend.
package query

import (
	"encoding/json"
	"strings"
)

// Predicate is a boolean filter over record fields
type Predicate interface {
	// ToSQL compiles the predicate into a parameterized SQL condition
	ToSQL() (string, []interface{})
}

// EqPredicate matches records whose field equals a value
type EqPredicate struct {
	Field string
	Value interface{}
}

// ContainsPredicate matches records whose JSON array field contains a value
type ContainsPredicate struct {
	Field string
	Value string
}

// OrPredicate matches records satisfying any of its operands
type OrPredicate struct {
	Operands []Predicate
}

// Eq builds an equality predicate
func Eq(field string, value interface{}) Predicate {
	return &EqPredicate{Field: field, Value: value}
}

// Contains builds an array-membership predicate
func Contains(field string, value string) Predicate {
	return &ContainsPredicate{Field: field, Value: value}
}

// Or builds a disjunction of predicates
func Or(operands ...Predicate) Predicate {
	return &OrPredicate{Operands: operands}
}

func (p *EqPredicate) ToSQL() (string, []interface{}) {
	return p.Field + " = ?", []interface{}{p.Value}
}

func (p *ContainsPredicate) ToSQL() (string, []interface{}) {
	// JSONB containment: column @> '["value"]'
	arg, _ := json.Marshal([]string{p.Value})
	return p.Field + " @> ?", []interface{}{string(arg)}
}

func (p *OrPredicate) ToSQL() (string, []interface{}) {
	if len(p.Operands) == 0 {
		return "1 = 1", nil
	}

	clauses := make([]string, 0, len(p.Operands))
	var args []interface{}
	for _, op := range p.Operands {
		clause, opArgs := op.ToSQL()
		clauses = append(clauses, clause)
		args = append(args, opArgs...)
	}

	return "(" + strings.Join(clauses, " OR ") + ")", args
}
