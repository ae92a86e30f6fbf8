package sql

import "testing"

func TestAssessComplexity(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "plain select is simple",
			sql:  "SELECT id, name FROM users WHERE id = 1",
			want: ComplexitySimple,
		},
		{
			name: "single join is moderate",
			sql:  "SELECT u.name FROM users u JOIN orders o ON o.user_id = u.id",
			want: ComplexityModerate,
		},
		{
			name: "aggregates with joins and subquery is complex",
			sql: "SELECT u.name, COUNT(o.id), SUM(o.total) FROM users u " +
				"JOIN orders o ON o.user_id = u.id " +
				"WHERE u.id IN (SELECT user_id FROM vip) GROUP BY u.name",
			want: ComplexityComplex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AssessComplexity(tt.sql); got != tt.want {
				t.Errorf("AssessComplexity() = %q, want %q", got, tt.want)
			}
		})
	}
}
