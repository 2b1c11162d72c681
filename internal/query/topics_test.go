package query

import (
	"reflect"
	"testing"
)

func TestTableTopic(t *testing.T) {
	if got := TableTopic("B08301"); got != "commuting" {
		t.Errorf("TableTopic(B08301) = %q, want commuting", got)
	}
	if got := TableTopic("ZZZ"); got != "" {
		t.Errorf("TableTopic(ZZZ) = %q, want empty", got)
	}
}

func TestTablesForTopic(t *testing.T) {
	got := TablesForTopic("commuting")
	want := []string{"B08301", "B08303"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TablesForTopic(commuting) = %v, want %v", got, want)
	}
	if TablesForTopic("astrology") != nil {
		t.Error("unknown topic must return nil")
	}
}

func TestExpandTableFilter(t *testing.T) {
	got := ExpandTableFilter([]string{"commuting", "B19013", "b25064"})
	want := []string{"B08301", "B08303", "B19013", "B25064"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandTableFilter = %v, want %v", got, want)
	}

	// Duplicates collapse, whether they arrive as a topic or an id
	got = ExpandTableFilter([]string{"B08301", "commuting"})
	want = []string{"B08301", "B08303"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("deduplicated filter = %v, want %v", got, want)
	}

	// Unknown entries pass through uppercased rather than erroring
	got = ExpandTableFilter([]string{"x99999"})
	if !reflect.DeepEqual(got, []string{"X99999"}) {
		t.Errorf("passthrough = %v", got)
	}
}
