// Package prompts renders the structured prompts sent to the language model.
// Each builder produces a fixed output grammar that pkg/sql knows how to
// parse back.
package prompts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hugdata-inc/hugdata-engine/pkg/models"
)

// BuildSQLGenerationPrompt creates the prompt for natural-language-to-SQL
// generation. It embeds the schema, the retrieved context, the read-only and
// row-limit constraints, and the SQL/EXPLANATION/REASONING response grammar.
func BuildSQLGenerationPrompt(question string, schema *models.Schema, context []string, maxRows int) string {
	var prompt strings.Builder

	prompt.WriteString("Given this database schema:\n")
	prompt.WriteString(FormatSchema(schema))
	prompt.WriteString("\n\nRelevant context from similar queries:\n")
	prompt.WriteString(formatContext(context, 5))

	fmt.Fprintf(&prompt, "\n\nGenerate a SQL query for the following request: %q\n", question)

	prompt.WriteString("\nRequirements:\n")
	prompt.WriteString("- Use only tables and columns that exist in the provided schema\n")
	prompt.WriteString("- Follow SQL best practices and security guidelines\n")
	fmt.Fprintf(&prompt, "- Add appropriate LIMIT clauses (max %d rows)\n", maxRows)
	prompt.WriteString("- Use proper JOIN syntax when needed\n")
	prompt.WriteString("- Add comments explaining complex logic\n")
	prompt.WriteString("- Ensure the query is safe and read-only (no INSERT, UPDATE, DELETE, DROP, etc.)\n")

	prompt.WriteString("\nFormat your response as:\n")
	prompt.WriteString("SQL: [your sql query here]\n")
	prompt.WriteString("EXPLANATION: [brief explanation of what the query does]\n")
	prompt.WriteString("REASONING: [step by step reasoning for your approach]\n")

	return prompt.String()
}

// FormatSchema renders tables and their columns as prompt text. Tables are
// sorted by name so the output is deterministic.
func FormatSchema(schema *models.Schema) string {
	if schema == nil || len(schema.Tables) == 0 {
		return "No schema information available"
	}

	names := make([]string, 0, len(schema.Tables))
	for name := range schema.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString("\n\n")
		}
		table := schema.Tables[name]

		fmt.Fprintf(&b, "Table: %s\nColumns: ", name)
		for j, col := range table.Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s (%s)", col.Name, col.Type)
			if !col.Nullable {
				b.WriteString(" NOT NULL")
			}
		}
	}
	return b.String()
}

// formatContext renders up to max retrieved lines as bullets. Anything past
// max is noise the model does not need.
func formatContext(context []string, max int) string {
	if len(context) == 0 {
		return "No relevant context available"
	}
	if max > 0 && len(context) > max {
		context = context[:max]
	}
	var b strings.Builder
	for i, item := range context {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}
