package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugdata-inc/hugdata-engine/pkg/models"
)

func testSchema() *models.Schema {
	return &models.Schema{
		Tables: map[string]models.Table{
			"users": {
				Columns: []models.Column{
					{Name: "id", Type: "integer", IsPrimaryKey: true},
					{Name: "email", Type: "text", Nullable: false},
				},
			},
			"orders": {
				Columns: []models.Column{
					{Name: "id", Type: "integer"},
					{Name: "user_id", Type: "integer", Nullable: true},
				},
			},
		},
	}
}

func TestBuildSQLGenerationPrompt(t *testing.T) {
	prompt := BuildSQLGenerationPrompt(
		"how many users signed up last week",
		testSchema(),
		[]string{"Table: users. Columns: id (integer), email (text)"},
		1000,
	)

	assert.Contains(t, prompt, `"how many users signed up last week"`)
	assert.Contains(t, prompt, "Table: users")
	assert.Contains(t, prompt, "email (text) NOT NULL")
	assert.Contains(t, prompt, "max 1000 rows")
	assert.Contains(t, prompt, "SQL:")
	assert.Contains(t, prompt, "EXPLANATION:")
	assert.Contains(t, prompt, "REASONING:")
}

func TestBuildSQLGenerationPrompt_EmptyInputs(t *testing.T) {
	prompt := BuildSQLGenerationPrompt("anything", nil, nil, 100)

	assert.Contains(t, prompt, "No schema information available")
	assert.Contains(t, prompt, "No relevant context available")
}

func TestFormatSchema_Deterministic(t *testing.T) {
	schema := testSchema()
	first := FormatSchema(schema)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, FormatSchema(schema))
	}
	// Sorted by table name: orders before users.
	assert.Less(t, strings.Index(first, "Table: orders"), strings.Index(first, "Table: users"))
}

func TestBuildSQLCorrectionPrompt(t *testing.T) {
	prompt := BuildSQLCorrectionPrompt(CorrectionInput{
		SQL:          "SELECT * FRON users",
		ErrorMessage: "syntax error at or near \"FRON\"",
		ErrorType:    "syntax_error",
		Complexity:   "simple",
		Schema:       testSchema(),
		Context:      []string{"Table: users. Columns: id (integer)"},
	})

	assert.Contains(t, prompt, "SELECT * FRON users")
	assert.Contains(t, prompt, "Error Type: syntax_error")
	assert.Contains(t, prompt, "Query Complexity: simple")
	assert.Contains(t, prompt, "Use proper ANSI SQL syntax")
	assert.Contains(t, prompt, "CORRECTED_SQL:")
	assert.Contains(t, prompt, "CHANGES_MADE:")
}

func TestBuildRelationshipPrompt(t *testing.T) {
	entities := []models.EntityModel{
		{Name: "users", Columns: []models.ModelColumn{{Name: "id", Type: "integer"}}},
		{Name: "orders", Columns: []models.ModelColumn{{Name: "user_id", Type: "integer"}}},
	}

	prompt, err := BuildRelationshipPrompt(entities, "Spanish")
	require.NoError(t, err)

	assert.Contains(t, prompt, `"name": "users"`)
	assert.Contains(t, prompt, `"relationships"`)
	assert.Contains(t, prompt, "MANY_TO_ONE")
	assert.Contains(t, prompt, "Use Spanish for the relationship name and reason fields")
}
