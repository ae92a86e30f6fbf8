package prompts

import (
	"fmt"
	"strings"

	"github.com/hugdata-inc/hugdata-engine/pkg/models"
)

// correctionRules is the fixed rule list embedded into every correction
// prompt.
const correctionRules = `1. Use proper ANSI SQL syntax
2. Ensure all table and column names are properly quoted if needed
3. Use correct JOIN syntax (JOIN ... ON ...)
4. Ensure parentheses are balanced
5. Use proper data type casting
6. Ensure all referenced tables and columns exist in the schema
7. Use proper GROUP BY clause when using aggregate functions
8. Ensure HAVING clause is used correctly with GROUP BY
9. Use proper ORDER BY syntax
10. Add LIMIT clauses for data safety (max 1000 rows)`

// CorrectionInput carries everything the correction prompt needs.
type CorrectionInput struct {
	SQL          string
	ErrorMessage string
	ErrorType    string
	Complexity   string
	Schema       *models.Schema
	Context      []string
}

// BuildSQLCorrectionPrompt creates the prompt for repairing a broken SQL
// statement. The response grammar is CORRECTED_SQL / EXPLANATION /
// CHANGES_MADE.
func BuildSQLCorrectionPrompt(input CorrectionInput) string {
	var prompt strings.Builder

	prompt.WriteString("You are an expert SQL debugger. Your task is to fix the syntactically incorrect SQL query below.\n")

	prompt.WriteString("\n### ERROR ANALYSIS ###\n")
	fmt.Fprintf(&prompt, "Error Type: %s\n", input.ErrorType)
	fmt.Fprintf(&prompt, "Query Complexity: %s\n", input.Complexity)

	prompt.WriteString("\n### ORIGINAL SQL ###\n")
	prompt.WriteString(input.SQL)
	prompt.WriteString("\n")

	prompt.WriteString("\n### ERROR MESSAGE ###\n")
	prompt.WriteString(input.ErrorMessage)
	prompt.WriteString("\n")

	prompt.WriteString("\n### DATABASE SCHEMA ###\n")
	prompt.WriteString(FormatSchema(input.Schema))
	prompt.WriteString("\n")

	prompt.WriteString("\n### RELEVANT CONTEXT ###\n")
	prompt.WriteString(formatContext(input.Context, 3))
	prompt.WriteString("\n")

	prompt.WriteString("\n### SQL CORRECTION RULES ###\n")
	prompt.WriteString(correctionRules)
	prompt.WriteString("\n")

	prompt.WriteString("\n### CORRECTION INSTRUCTIONS ###\n")
	prompt.WriteString("1. Analyze the error message carefully to understand the root cause\n")
	prompt.WriteString("2. Use the database schema to ensure all referenced tables and columns exist\n")
	prompt.WriteString("3. Apply the SQL rules strictly to generate syntactically correct SQL\n")
	prompt.WriteString("4. Preserve the original intent and logic of the query as much as possible\n")
	prompt.WriteString("5. Add appropriate safety measures (LIMIT clauses if missing)\n")
	prompt.WriteString("6. Ensure the query is read-only (no INSERT, UPDATE, DELETE, DROP, etc.)\n")

	prompt.WriteString("\n### RESPONSE FORMAT ###\n")
	prompt.WriteString("Please provide your response in the following format:\n\n")
	prompt.WriteString("CORRECTED_SQL:\n[Your corrected SQL query here]\n\n")
	prompt.WriteString("EXPLANATION:\n[Brief explanation of what was wrong and how you fixed it]\n\n")
	prompt.WriteString("CHANGES_MADE:\n[List of specific changes made to fix the query]\n")

	return prompt.String()
}
