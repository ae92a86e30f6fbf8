// Package models holds the domain types shared by the engine's pipelines.
package models

// DocumentKind classifies an indexed schema document.
type DocumentKind string

const (
	DocumentKindTable        DocumentKind = "table_description"
	DocumentKindColumn       DocumentKind = "table_columns"
	DocumentKindRelationship DocumentKind = "relationship"
	DocumentKindSQLPair      DocumentKind = "sql_pair"
)

// Schema is the raw database schema submitted for indexing.
type Schema struct {
	Tables        map[string]Table `json:"tables"`
	Relationships []Relationship   `json:"relationships,omitempty"`
}

// Table describes one database table.
type Table struct {
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type,omitempty"` // "table" or "view"
	RowCount    int64    `json:"row_count,omitempty"`
	Columns     []Column `json:"columns"`
}

// Column describes one table column.
type Column struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Description  string `json:"description,omitempty"`
	Nullable     bool   `json:"nullable"`
	IsPrimaryKey bool   `json:"is_primary_key,omitempty"`
}

// Relationship describes a foreign-key style link between two tables.
type Relationship struct {
	FromTable  string `json:"from_table"`
	FromColumn string `json:"from_column"`
	ToTable    string `json:"to_table"`
	ToColumn   string `json:"to_column"`
	Type       string `json:"type,omitempty"` // defaults to "foreign_key"
}

// SchemaDocument is one unit of indexed knowledge. It belongs to exactly one
// project-scoped collection, is created during indexing, and is immutable
// except by full re-index.
type SchemaDocument struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Kind     DocumentKind      `json:"kind"`
	Metadata map[string]string `json:"metadata"`
}

// IndexResult reports how many documents a schema indexing run produced.
// On collaborator failure all counts are zero and Err carries the cause.
type IndexResult struct {
	Tables        int    `json:"indexed_tables"`
	Columns       int    `json:"indexed_columns"`
	Relationships int    `json:"indexed_relationships"`
	Total         int    `json:"total_documents"`
	Err           string `json:"error,omitempty"`
}

// SchemaSummary reports per-kind document counts for an indexed project.
type SchemaSummary struct {
	ProjectID     string `json:"project_id"`
	Tables        uint64 `json:"tables_indexed"`
	Columns       uint64 `json:"columns_indexed"`
	Relationships uint64 `json:"relationships_indexed"`
	Total         uint64 `json:"total_documents"`
}
