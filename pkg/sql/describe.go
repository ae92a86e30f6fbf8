package sql

import (
	"fmt"
	"strings"
)

// DescribeQuery builds a deterministic explanation of a statement from its
// structure. Used as the fallback when the model response carries no
// explanation section.
func DescribeQuery(sqlText, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This query was generated to answer: '%s'.", question)

	upper := strings.ToUpper(sqlText)
	if strings.Contains(upper, "SELECT") {
		b.WriteString(" It retrieves data")
		if tables := fromTables(sqlText); len(tables) > 0 {
			fmt.Fprintf(&b, " from the %s table(s)", strings.Join(tables, ", "))
		}
	}
	if strings.Contains(upper, "WHERE") {
		b.WriteString(" with specific filtering conditions")
	}
	if strings.Contains(upper, "ORDER BY") {
		b.WriteString(" and sorts the results")
	}
	if strings.Contains(upper, "LIMIT") {
		b.WriteString(" with a limit on the number of rows returned")
	}

	b.WriteString(".")
	return b.String()
}

// fromTables extracts the table names between FROM and the next clause
// keyword. Best effort; join clauses and aliases are left as written.
func fromTables(sqlText string) []string {
	fields := strings.Fields(sqlText)
	var tables []string
	inFrom := false
	for _, field := range fields {
		upper := strings.ToUpper(field)
		switch {
		case upper == "FROM":
			inFrom = true
		case inFrom && (upper == "WHERE" || upper == "GROUP" || upper == "ORDER" || upper == "LIMIT" || upper == "JOIN" || upper == "INNER" || upper == "LEFT" || upper == "RIGHT"):
			return tables
		case inFrom:
			tables = append(tables, strings.TrimRight(field, ",;"))
		}
	}
	return tables
}
