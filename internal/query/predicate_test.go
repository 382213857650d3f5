package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqToSQL(t *testing.T) {
	clause, args := Eq("owner_id", "u1").ToSQL()

	assert.Equal(t, "owner_id = ?", clause)
	assert.Equal(t, []interface{}{"u1"}, args)
}

func TestContainsToSQL(t *testing.T) {
	clause, args := Contains("shared_with", "a@x.com").ToSQL()

	assert.Equal(t, "shared_with @> ?", clause)
	assert.Equal(t, []interface{}{`["a@x.com"]`}, args)
}

func TestOrToSQL(t *testing.T) {
	p := Or(
		Eq("owner_id", "u1"),
		Contains("shared_with", "a@x.com"),
	)

	clause, args := p.ToSQL()

	assert.Equal(t, "(owner_id = ? OR shared_with @> ?)", clause)
	assert.Equal(t, []interface{}{"u1", `["a@x.com"]`}, args)
}

func TestOrEmpty(t *testing.T) {
	clause, args := Or().ToSQL()

	assert.Equal(t, "1 = 1", clause)
	assert.Empty(t, args)
}

func TestNestedOr(t *testing.T) {
	p := Or(
		Eq("account_id", "acc1"),
		Or(Eq("owner_id", "u1"), Eq("owner_id", "u2")),
	)

	clause, args := p.ToSQL()

	assert.Equal(t, "(account_id = ? OR (owner_id = ? OR owner_id = ?))", clause)
	assert.Len(t, args, 3)
}
