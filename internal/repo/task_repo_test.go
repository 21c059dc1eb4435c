package repo

import "testing"

func TestSortColumn(t *testing.T) {
	tests := []struct {
		field string
		col   string
		ok    bool
	}{
		{"", "created_at", true},
		{"createdAt", "created_at", true},
		{"updatedAt", "updated_at", true},
		{"dueDate", "due_date", true},
		{"title", "title", true},
		{"status", "status", true},
		{"priority", "priority", true},
		{"owner_id", "", false},
		{"created_at; DROP TABLE tasks", "", false},
		{"password_hash", "", false},
	}
	for _, tt := range tests {
		col, ok := SortColumn(tt.field)
		if col != tt.col || ok != tt.ok {
			t.Errorf("SortColumn(%q) = (%q, %v), want (%q, %v)", tt.field, col, ok, tt.col, tt.ok)
		}
	}
}
