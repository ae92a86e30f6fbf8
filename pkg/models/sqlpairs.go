package models

// SQLPair is one curated question/SQL example. Pairs are grouped into a
// library keyed by boilerplate name and indexed for a project when its MDL
// declares that boilerplate.
type SQLPair struct {
	ID       string `json:"id,omitempty"`
	Question string `json:"question"`
	SQL      string `json:"sql"`
}

// SQLPairLibrary maps a lowercase boilerplate name to its example pairs.
type SQLPairLibrary map[string][]SQLPair

// SQLPairsIndexResult reports one SQL-pair indexing run.
type SQLPairsIndexResult struct {
	Indexed      int      `json:"indexed_count"`
	Boilerplates []string `json:"boilerplates,omitempty"`
	Collection   string   `json:"collection,omitempty"`
	ProjectID    string   `json:"project_id"`
}

// SQLPairsStats reports the size of a project's SQL-pair collection.
type SQLPairsStats struct {
	TotalPairs       uint64 `json:"total_pairs"`
	CollectionExists bool   `json:"collection_exists"`
	ProjectID        string `json:"project_id"`
}

// TableDescriptionIndexResult reports one table-description indexing run.
type TableDescriptionIndexResult struct {
	Indexed    int    `json:"indexed_count"`
	Collection string `json:"collection,omitempty"`
	ProjectID  string `json:"project_id"`
}

// TableDescriptionStats reports the size of a project's table-description
// collection.
type TableDescriptionStats struct {
	TotalDescriptions uint64 `json:"total_descriptions"`
	CollectionExists  bool   `json:"collection_exists"`
	ProjectID         string `json:"project_id"`
}
