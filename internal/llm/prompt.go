package llm

import (
	"fmt"
	"strings"

	"github.com/schemascout/schemascout/internal/schema"
)

// maxColumnsPerTable caps the schema section so large tables never overflow
// the prompt.
const maxColumnsPerTable = 50

// BuildGroundedPrompt creates a generation prompt carrying the retrieved
// schema, so the backend never needs unscoped schema knowledge.
func BuildGroundedPrompt(request string, summaries []schema.TableSummary) string {
	var sb strings.Builder

	sb.WriteString(`You are an expert Oracle SQL developer specializing in Oracle Fusion Applications. Your task is to convert natural language queries into accurate Oracle SQL statements.

CRITICAL RULES:
1. Generate ONLY the SQL query - no explanations or additional text
2. Use ONLY tables and columns from the AVAILABLE SCHEMA below
3. NEVER invent or hallucinate column names - if a column doesn't exist in the schema, DON'T use it
4. Use proper Oracle syntax and functions
5. Include appropriate table aliases for readability
6. Use proper JOIN syntax for related tables
7. Handle dates with TO_DATE() function
8. Use appropriate WHERE clauses for filtering

AVAILABLE SCHEMA (Use ONLY these tables and columns):

`)

	for _, summary := range summaries {
		columns := summary.Columns
		if len(columns) > maxColumnsPerTable {
			columns = columns[:maxColumnsPerTable]
		}

		fmt.Fprintf(&sb, "TABLE: %s\n", summary.Table)

		if summary.Description != "" {
			fmt.Fprintf(&sb, "DESCRIPTION: %s\n", summary.Description)
		}

		fmt.Fprintf(&sb, "COLUMNS: %s\n\n", strings.Join(columns, ", "))
	}

	fmt.Fprintf(&sb, "USER QUERY: %s\n\nGenerate the Oracle SQL query:", request)

	return sb.String()
}

// BuildBasicPrompt creates a fallback prompt for when schema retrieval
// produced nothing; it names only well-known tables.
func BuildBasicPrompt(request string) string {
	return fmt.Sprintf(`You are an expert Oracle SQL developer specializing in Oracle Fusion Applications. Your task is to convert natural language queries into accurate Oracle SQL statements.

IMPORTANT GUIDELINES:
1. Generate ONLY the SQL query - no explanations or additional text
2. Use proper Oracle syntax and functions
3. Include appropriate table aliases for readability
4. Use proper JOIN syntax for related tables
5. Handle dates with TO_DATE() function
6. Use appropriate WHERE clauses for filtering
7. Include proper column selections based on the query intent

COMMON ORACLE FUSION TABLES:
- AP_INVOICES_ALL (Accounts Payable invoices)
- AP_INVOICE_DISTRIBUTIONS_ALL (Invoice line items)
- AP_SUPPLIERS (Supplier information)
- AR_CASH_RECEIPTS_ALL (Customer receipts)
- AR_CUSTOMERS (Customer information)
- GL_JE_HEADERS (Journal entry headers)
- GL_JE_LINES (Journal entry lines)
- GL_CODE_COMBINATIONS (Chart of accounts)

USER QUERY: %s

Generate the Oracle SQL query:`, request)
}

// ExtractSQL pulls the SQL statement out of a completion, stripping markdown
// fences and any leading prose before the first SELECT.
func ExtractSQL(response string) string {
	sql := strings.TrimSpace(response)

	if strings.HasPrefix(sql, "```sql") {
		sql = sql[len("```sql"):]
	} else if strings.HasPrefix(sql, "```") {
		sql = sql[len("```"):]
	}

	sql = strings.TrimSuffix(strings.TrimSpace(sql), "```")
	sql = strings.TrimSpace(sql)

	if strings.HasPrefix(strings.ToUpper(sql), "SELECT") {
		return sql
	}

	// Find the line where the statement starts
	lines := strings.Split(sql, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), "SELECT") {
			return strings.TrimSpace(strings.Join(lines[i:], "\n"))
		}
	}

	return sql
}
