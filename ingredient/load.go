package ingredient

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseSynonyms decodes an external synonym table from JSON, a flat object of
// alias -> canonical key. Entries are lowercased so the table matches the
// resolver's normalized form.
func ParseSynonyms(data []byte) (SynonymTable, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse synonym table: %w", err)
	}

	table := make(SynonymTable, len(raw))
	for alias, canon := range raw {
		alias = strings.ToLower(strings.TrimSpace(alias))
		canon = strings.ToLower(strings.TrimSpace(canon))
		if alias == "" || canon == "" {
			return nil, fmt.Errorf("parse synonym table: empty alias or key")
		}
		table[alias] = canon
	}
	return table, nil
}
