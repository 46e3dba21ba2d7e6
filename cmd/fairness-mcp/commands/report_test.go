package commands

import (
	"testing"

	"fairness-mcp/internal/snapshot"
)

func TestByReferenceTime(t *testing.T) {
	paths := []string{"march.json", "january.json", "february.json"}
	files := []*snapshot.File{
		{Now: "2025-03-01T00:00:00Z"},
		{Now: "2025-01-01T00:00:00Z"},
		{Now: "2025-02-01T00:00:00Z"},
	}

	order, err := byReferenceTime(paths, files)
	if err != nil {
		t.Fatalf("byReferenceTime failed: %v", err)
	}
	want := []int{1, 2, 0}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("At position %d: expected %s, got %s", i, paths[want[i]], paths[order[i]])
		}
	}

	if _, err := byReferenceTime([]string{"bad.json"}, []*snapshot.File{{Now: "yesterday"}}); err == nil {
		t.Error("Expected an error for an unparseable reference time")
	}
}
