package vectorstore

import "fmt"

// Collection names are deterministic functions of project id and purpose,
// collision-free across purposes by prefix.

// SchemaCollection names the indexed-schema collection for a project.
func SchemaCollection(projectID string) string {
	return fmt.Sprintf("schema_%s", projectID)
}

// SQLPairsCollection names the question/SQL pair collection for a project.
func SQLPairsCollection(projectID string) string {
	return fmt.Sprintf("sql_pairs_%s", projectID)
}

// TableDescriptionsCollection names the table description collection for a
// project.
func TableDescriptionsCollection(projectID string) string {
	return fmt.Sprintf("table_descriptions_%s", projectID)
}
