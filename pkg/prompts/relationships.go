package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hugdata-inc/hugdata-engine/pkg/models"
)

// BuildRelationshipPrompt creates the one-shot prompt asking the model to
// propose relationships between the given entity models. The expected reply
// is a single JSON object with a "relationships" array.
func BuildRelationshipPrompt(entities []models.EntityModel, language string) (string, error) {
	modelsJSON, err := json.MarshalIndent(entities, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal models for prompt: %w", err)
	}

	var prompt strings.Builder

	prompt.WriteString("You are an expert in database schema design and relationship recommendation.\n\n")
	prompt.WriteString("Given the following data models, analyze them and suggest appropriate relationships between them, but only if there are clear and beneficial relationships to recommend.\n")

	prompt.WriteString("\n### MODELS ###\n")
	prompt.Write(modelsJSON)
	prompt.WriteString("\n")

	prompt.WriteString("\n### GUIDELINES ###\n")
	prompt.WriteString("1. Do not recommend relationships within the same model (fromModel and toModel must be different)\n")
	prompt.WriteString("2. Only suggest relationships if there is a clear and beneficial reason to do so\n")
	prompt.WriteString("3. If there are no good relationships to recommend, return an empty list\n")
	prompt.WriteString("4. Use \"MANY_TO_ONE\", \"ONE_TO_MANY\", or \"ONE_TO_ONE\" relationship types only\n")
	prompt.WriteString("5. Prefer \"MANY_TO_ONE\" and \"ONE_TO_MANY\" over \"MANY_TO_MANY\" relationships\n")
	prompt.WriteString("6. Look for common patterns like foreign keys (columns ending in _id, id suffixes)\n")
	prompt.WriteString("7. Consider columns with similar names that might reference each other\n")
	prompt.WriteString("8. Ensure both models and columns exist before recommending\n")

	prompt.WriteString("\n### RELATIONSHIP CRITERIA ###\n")
	prompt.WriteString("- Foreign key relationships (e.g., user_id in orders table -> id in users table)\n")
	prompt.WriteString("- Common naming patterns (e.g., customer_id, product_id)\n")
	prompt.WriteString("- Logical business relationships between entities\n")
	prompt.WriteString("- Referential integrity opportunities\n")

	prompt.WriteString("\n### RESPONSE FORMAT ###\n")
	prompt.WriteString("Provide your response as a JSON object with this exact structure:\n\n")
	prompt.WriteString(`{
    "relationships": [
        {
            "name": "descriptive_relationship_name",
            "fromModel": "source_model_name",
            "fromColumn": "source_column_name",
            "type": "MANY_TO_ONE|ONE_TO_MANY|ONE_TO_ONE",
            "toModel": "target_model_name",
            "toColumn": "target_column_name",
            "reason": "clear_explanation"
        }
    ]
}
`)
	prompt.WriteString("\nIf no relationships are recommended, return:\n")
	prompt.WriteString("{\n    \"relationships\": []\n}\n")

	fmt.Fprintf(&prompt, "\n### LANGUAGE ###\nUse %s for the relationship name and reason fields.\n", language)

	prompt.WriteString("\n### INSTRUCTIONS ###\n")
	prompt.WriteString("Analyze the models carefully and suggest optimizations for their relationships. Consider best practices in database design, opportunities for normalization, indexing strategies, and relationships that could improve data integrity and enhance query performance.\n")

	return prompt.String(), nil
}
