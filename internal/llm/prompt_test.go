package llm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemascout/schemascout/internal/schema"
)

func TestBuildGroundedPrompt(t *testing.T) {
	summaries := []schema.TableSummary{
		{
			Table:       "AP_INVOICES_ALL",
			Description: "Accounts payable invoice headers",
			Columns:     []string{"INVOICE_ID", "INVOICE_NUM", "INVOICE_AMOUNT"},
		},
		{
			Table:   "AP_SUPPLIERS",
			Columns: []string{"VENDOR_ID", "VENDOR_NAME"},
		},
	}

	prompt := BuildGroundedPrompt("unpaid invoices due in August", summaries)

	assert.Contains(t, prompt, "TABLE: AP_INVOICES_ALL")
	assert.Contains(t, prompt, "DESCRIPTION: Accounts payable invoice headers")
	assert.Contains(t, prompt, "COLUMNS: INVOICE_ID, INVOICE_NUM, INVOICE_AMOUNT")
	assert.Contains(t, prompt, "TABLE: AP_SUPPLIERS")
	assert.Contains(t, prompt, "USER QUERY: unpaid invoices due in August")
	assert.Contains(t, prompt, "NEVER invent or hallucinate column names")

	// Table without a description omits the line entirely
	assert.NotContains(t, prompt, "DESCRIPTION: \n")
}

func TestBuildGroundedPromptCapsColumns(t *testing.T) {
	columns := make([]string, 80)
	for i := range columns {
		columns[i] = fmt.Sprintf("COL_%d", i)
	}

	prompt := BuildGroundedPrompt("anything", []schema.TableSummary{
		{Table: "WIDE_TABLE", Columns: columns},
	})

	assert.Contains(t, prompt, "COL_49")
	assert.NotContains(t, prompt, "COL_50,")
	assert.NotContains(t, prompt, "COL_79")
}

func TestBuildBasicPrompt(t *testing.T) {
	prompt := BuildBasicPrompt("list suppliers")

	assert.Contains(t, prompt, "AP_SUPPLIERS")
	assert.Contains(t, prompt, "USER QUERY: list suppliers")
}

func TestExtractSQL(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected string
	}{
		{
			name:     "bare statement",
			response: "SELECT * FROM ORDERS",
			expected: "SELECT * FROM ORDERS",
		},
		{
			name:     "sql fence",
			response: "```sql\nSELECT * FROM ORDERS\n```",
			expected: "SELECT * FROM ORDERS",
		},
		{
			name:     "plain fence",
			response: "```\nSELECT * FROM ORDERS\n```",
			expected: "SELECT * FROM ORDERS",
		},
		{
			name:     "leading prose",
			response: "Here is the query:\nSELECT * FROM ORDERS\nWHERE ID = 1",
			expected: "SELECT * FROM ORDERS\nWHERE ID = 1",
		},
		{
			name:     "lowercase select",
			response: "select * from orders",
			expected: "select * from orders",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractSQL(tt.response))
		})
	}
}

func TestExtractSQLMultilineKeepsWholeStatement(t *testing.T) {
	response := "The following query answers your question:\n\n" +
		"SELECT INVOICE_ID, INVOICE_AMOUNT\nFROM AP_INVOICES_ALL\nWHERE PAYMENT_STATUS_FLAG = 'N'"

	sql := ExtractSQL(response)

	assert.True(t, strings.HasPrefix(sql, "SELECT"))
	assert.Contains(t, sql, "FROM AP_INVOICES_ALL")
}
