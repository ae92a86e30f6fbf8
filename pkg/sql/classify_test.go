package sql

import "testing"

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"syntax", "ERROR: syntax error at or near \"FRON\"", ErrorSyntax},
		{"unexpected token", "unexpected token at line 3", ErrorSyntax},
		{"unknown column", "Unknown column 'usr_name' in 'field list'", ErrorColumnNotFound},
		{"column missing", "column \"age\" does not exist", ErrorColumnNotFound},
		{"relation missing", "relation does not exist", ErrorTableNotFound},
		{"unknown table", "Unknown table 'usrs'", ErrorTableNotFound},
		{"group by", "column must appear in the GROUP BY clause or be used in an aggregate function", ErrorMissingGroupBy},
		{"join", "ambiguous column reference in JOIN", ErrorJoin},
		{"unmatched", "connection reset by peer", ErrorUnknown},
		{"empty", "", ErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.message); got != tt.want {
				t.Errorf("ClassifyError(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestClassifyError_PriorityOrder(t *testing.T) {
	// Mentions both a syntax problem and a join; syntax wins because it is
	// checked first.
	got := ClassifyError("syntax error in JOIN clause")
	if got != ErrorSyntax {
		t.Errorf("ClassifyError() = %q, want %q", got, ErrorSyntax)
	}
}
