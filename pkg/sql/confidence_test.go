package sql

import "testing"

func TestConfidence(t *testing.T) {
	tests := []struct {
		name         string
		sql          string
		contextCount int
		want         float64
	}{
		{
			name:         "full marks",
			sql:          "SELECT id FROM users LIMIT 100;",
			contextCount: 3,
			want:         1.0,
		},
		{
			name:         "no limit and no context",
			sql:          "SELECT id FROM users",
			contextCount: 0,
			want:         0.9,
		},
		{
			name:         "bare select",
			sql:          "SELECT 1",
			contextCount: 0,
			want:         0.8,
		},
		{
			name:         "malformed gets no structure bonus",
			sql:          "SELECT id FROM users WHERE (a = 1",
			contextCount: 0,
			want:         0.7,
		},
		{
			name:         "not sql at all",
			sql:          "hello world",
			contextCount: 0,
			want:         0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Confidence(tt.sql, tt.contextCount); got != tt.want {
				t.Errorf("Confidence(%q, %d) = %v, want %v", tt.sql, tt.contextCount, got, tt.want)
			}
		})
	}
}

func TestCorrectionConfidence(t *testing.T) {
	t.Run("changed statement scores higher", func(t *testing.T) {
		score, passed, corrections := CorrectionConfidence(
			"SELECT * FROM usrs",
			"SELECT * FROM users LIMIT 100",
		)
		if !passed {
			t.Error("expected validation to pass")
		}
		if score != 1.0 {
			t.Errorf("score = %v, want 1.0", score)
		}
		if len(corrections) != 2 {
			t.Errorf("corrections = %v", corrections)
		}
	})

	t.Run("unchanged statement scores low", func(t *testing.T) {
		score, passed, _ := CorrectionConfidence("SELECT 1", "select 1")
		if !passed {
			t.Error("expected validation to pass")
		}
		if score != 0.3 {
			t.Errorf("score = %v, want 0.3", score)
		}
	})

	t.Run("dangerous keyword zeroes score and fails", func(t *testing.T) {
		score, passed, _ := CorrectionConfidence("SELECT 1", "DROP TABLE users")
		if passed {
			t.Error("expected validation to fail")
		}
		if score != 0 {
			t.Errorf("score = %v, want 0", score)
		}
	})
}
