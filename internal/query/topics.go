package query

import (
	_ "embed"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var tablesManifest []byte

// TableInfo describes one ACS table grouping from the bundled manifest.
type TableInfo struct {
	ID    string `yaml:"id"`
	Topic string `yaml:"topic"`
	Label string `yaml:"label"`
}

type manifest struct {
	Tables []TableInfo `yaml:"tables"`
}

var tableIndex = loadManifest()

func loadManifest() map[string]TableInfo {
	var m manifest
	if err := yaml.Unmarshal(tablesManifest, &m); err != nil {
		// The manifest is compiled in; a parse failure is a build defect.
		panic("tables.yaml: " + err.Error())
	}
	idx := make(map[string]TableInfo, len(m.Tables))
	for _, t := range m.Tables {
		idx[t.ID] = t
	}
	return idx
}

// TableTopic returns the bundled topic label for a table id, or "".
func TableTopic(tableID string) string {
	return tableIndex[tableID].Topic
}

// TablesForTopic returns the table ids filed under a topic name.
func TablesForTopic(topic string) []string {
	var ids []string
	for _, t := range tableIndex {
		if strings.EqualFold(t.Topic, topic) {
			ids = append(ids, t.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// ExpandTableFilter resolves a caller-supplied mixed list of table ids and
// topic names into table ids. Entries that are neither a known topic nor a
// known table pass through unchanged: the catalogs treat them as tables that
// match nothing, the same as querying absent data.
func ExpandTableFilter(entries []string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, e := range entries {
		if ids := TablesForTopic(e); len(ids) > 0 {
			for _, id := range ids {
				add(id)
			}
			continue
		}
		add(strings.ToUpper(strings.TrimSpace(e)))
	}
	return out
}
