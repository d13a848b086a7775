package news

import "strings"

// RelevanceFilter matches headline titles against an ordered keyword list.
type RelevanceFilter struct {
	keywords []string
	lowered  []string
	maxHits  int
}

func NewRelevanceFilter(keywords []string, maxHits int) *RelevanceFilter {
	f := &RelevanceFilter{
		keywords: make([]string, 0, len(keywords)),
		lowered:  make([]string, 0, len(keywords)),
		maxHits:  maxHits,
	}
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		f.keywords = append(f.keywords, k)
		f.lowered = append(f.lowered, strings.ToLower(k))
	}
	return f
}

// Hits returns the keywords found in title in keyword-list order,
// case-insensitively, deduplicated and capped at maxHits. An empty result
// means the headline is not market-relevant.
func (f *RelevanceFilter) Hits(title string) []string {
	t := strings.ToLower(title)
	var hits []string
	seen := make(map[string]struct{})
	for i, k := range f.lowered {
		if len(hits) >= f.maxHits {
			break
		}
		if _, dup := seen[k]; dup {
			continue
		}
		if strings.Contains(t, k) {
			seen[k] = struct{}{}
			hits = append(hits, f.keywords[i])
		}
	}
	return hits
}
