package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTablesInStatement(t *testing.T) {
	tests := []struct {
		name     string
		stmt     string
		expected []string
	}{
		{
			name:     "single table",
			stmt:     "SELECT * FROM ORDERS",
			expected: []string{"ORDERS"},
		},
		{
			name:     "join",
			stmt:     "SELECT * FROM ORDERS O JOIN CUSTOMERS C ON O.CUSTOMER_ID = C.CUSTOMER_ID",
			expected: []string{"ORDERS", "CUSTOMERS"},
		},
		{
			name:     "lowercase normalized",
			stmt:     "select * from orders",
			expected: []string{"ORDERS"},
		},
		{
			name:     "audit variant preserved",
			stmt:     "SELECT * FROM ORDERS_",
			expected: []string{"ORDERS_"},
		},
		{
			name:     "duplicate references collapse",
			stmt:     "SELECT * FROM ORDERS JOIN ORDERS ON 1=1",
			expected: []string{"ORDERS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TablesInStatement(tt.stmt))
		})
	}
}

func TestTableRefsAliases(t *testing.T) {
	refs := TableRefs("SELECT * FROM ORDERS O JOIN CUSTOMERS AS C ON O.CUSTOMER_ID = C.CUSTOMER_ID")

	assert.Equal(t, []TableRef{
		{Table: "ORDERS", Alias: "O"},
		{Table: "CUSTOMERS", Alias: "C"},
	}, refs)
}

func TestTableRefsKeywordNotAlias(t *testing.T) {
	refs := TableRefs("SELECT * FROM ORDERS WHERE AMOUNT > 10")

	assert.Equal(t, []TableRef{{Table: "ORDERS"}}, refs)
}

func TestColumnRefsInStatement(t *testing.T) {
	refs := ColumnRefsInStatement("SELECT o.AMOUNT, c.NAME FROM ORDERS o JOIN CUSTOMERS c ON o.CUSTOMER_ID = c.CUSTOMER_ID")

	assert.Contains(t, refs, ColumnRef{Prefix: "O", Column: "AMOUNT"})
	assert.Contains(t, refs, ColumnRef{Prefix: "C", Column: "NAME"})
	assert.Contains(t, refs, ColumnRef{Prefix: "O", Column: "CUSTOMER_ID"})
}

func TestAliasMap(t *testing.T) {
	aliases := AliasMap("SELECT * FROM ORDERS O JOIN CUSTOMERS ON 1=1")

	assert.Equal(t, "ORDERS", aliases["O"])
	assert.Equal(t, "ORDERS", aliases["ORDERS"])
	assert.Equal(t, "CUSTOMERS", aliases["CUSTOMERS"])
}
