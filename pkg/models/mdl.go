package models

// RelationType is the three-value relationship enum. No other value is ever
// exposed to callers.
type RelationType string

const (
	RelationManyToOne RelationType = "MANY_TO_ONE"
	RelationOneToMany RelationType = "ONE_TO_MANY"
	RelationOneToOne  RelationType = "ONE_TO_ONE"
)

// IsValid reports whether t is one of the three allowed relationship types.
func (t RelationType) IsValid() bool {
	switch t {
	case RelationManyToOne, RelationOneToMany, RelationOneToOne:
		return true
	}
	return false
}

// ModelDefinition is the structured description of entities and attributes
// used for relationship recommendation and indexing (the caller's MDL
// document). Metrics and views participate in table-description indexing
// only; recommendation works over Models.
type ModelDefinition struct {
	Models  []EntityModel `json:"models"`
	Metrics []EntityModel `json:"metrics,omitempty"`
	Views   []EntityModel `json:"views,omitempty"`
}

// EntityModel is one declared entity with its attributes.
type EntityModel struct {
	Name       string         `json:"name"`
	Columns    []ModelColumn  `json:"columns"`
	Properties map[string]any `json:"properties,omitempty"`
}

// ModelColumn is one attribute of an entity. A non-empty Relationship marks
// the column as already bound to a relationship; such columns are excluded
// from recommendation input and from attribute-existence checks.
type ModelColumn struct {
	Name         string         `json:"name"`
	Type         string         `json:"type,omitempty"`
	Relationship string         `json:"relationship,omitempty"`
	Properties   map[string]any `json:"properties,omitempty"`
}

// ModelRelationship is one accepted relationship candidate. Invariants held
// by the validator: FromModel != ToModel, Type.IsValid(), and both endpoints
// exist in the supplied model definition.
type ModelRelationship struct {
	Name       string       `json:"name"`
	FromModel  string       `json:"fromModel"`
	FromColumn string       `json:"fromColumn"`
	Type       RelationType `json:"type"`
	ToModel    string       `json:"toModel"`
	ToColumn   string       `json:"toColumn"`
	Reason     string       `json:"reason"`
}

// ComplexityAnalysis summarizes the shape of a model definition to support
// relationship recommendation tuning.
type ComplexityAnalysis struct {
	TotalModels          int                        `json:"total_models"`
	TotalColumns         int                        `json:"total_columns"`
	ModelSizes           map[string]int             `json:"model_sizes"`
	PotentialForeignKeys []ForeignKeyCandidate      `json:"potential_foreign_keys"`
	NamingPatterns       map[string][]PatternColumn `json:"naming_patterns"`
}

// ForeignKeyCandidate is a column whose name suggests a foreign key.
type ForeignKeyCandidate struct {
	Model       string `json:"model"`
	Column      string `json:"column"`
	Pattern     string `json:"pattern"`                // "id_suffix" or "primary_key"
	TargetModel string `json:"target_model,omitempty"` // pluralized guess for _id columns
}

// PatternColumn records a column participating in a shared name prefix.
type PatternColumn struct {
	Model  string `json:"model"`
	Column string `json:"column"`
}
