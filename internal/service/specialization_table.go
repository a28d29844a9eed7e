package service

import (
	"sort"
	"strings"
)

// SpecializationTable maps a subject-name keyword to the specialization keywords accepted for it.
// Keys and values are lower case.
type SpecializationTable map[string][]string

// DefaultSpecializationTable returns the built-in subject keyword table.
func DefaultSpecializationTable() SpecializationTable {
	return SpecializationTable{
		"mathematics":      {"math", "mathematics", "statistics", "applied math", "pure math"},
		"math":             {"math", "mathematics", "statistics"},
		"physics":          {"physics", "science", "engineering"},
		"chemistry":        {"chemistry", "science", "biochemistry"},
		"biology":          {"biology", "science", "life science", "zoology", "botany", "biochemistry"},
		"science":          {"science", "physics", "chemistry", "biology"},
		"english":          {"english", "literature", "language", "linguistics"},
		"language":         {"language", "linguistics", "literature"},
		"history":          {"history", "social studies", "humanities"},
		"geography":        {"geography", "social studies", "earth science"},
		"social":           {"social studies", "history", "geography", "civics", "sociology"},
		"computer":         {"computer", "computing", "information technology", "informatics", "software"},
		"information":      {"information technology", "computer", "informatics"},
		"economics":        {"economics", "commerce", "business", "finance"},
		"commerce":         {"commerce", "accounting", "business", "economics"},
		"accounting":       {"accounting", "accountancy", "commerce", "finance"},
		"business":         {"business", "commerce", "management", "economics"},
		"physical":         {"physical education", "sports", "kinesiology"},
		"fine art":         {"fine art", "visual art", "design"},
		"visual art":       {"visual art", "fine art", "design"},
		"music":            {"music", "performing arts"},
		"religion":         {"religion", "religious studies", "theology"},
		"civics":           {"civics", "political science", "social studies"},
		"political":        {"political science", "civics", "social studies"},
		"environmental":    {"environmental", "science", "ecology"},
		"psychology":       {"psychology", "counseling", "counselling"},
		"technology":       {"technology", "engineering", "computer"},
		"home economics":   {"home economics", "home science", "nutrition"},
		"agriculture":      {"agriculture", "agronomy", "biology"},
		"statistics":       {"statistics", "mathematics", "math"},
		"literature":       {"literature", "english", "language"},
		"foreign language": {"language", "linguistics", "literature"},
	}
}

// WithOverrides returns a copy of t where each override replaces the entry for its subject keyword.
func (t SpecializationTable) WithOverrides(overrides map[string][]string) SpecializationTable {
	merged := make(SpecializationTable, len(t)+len(overrides))
	for key, values := range t {
		merged[key] = append([]string(nil), values...)
	}
	for key, values := range overrides {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" || len(values) == 0 {
			continue
		}
		normalized := make([]string, 0, len(values))
		for _, v := range values {
			if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
				normalized = append(normalized, v)
			}
		}
		merged[key] = normalized
	}
	return merged
}

// Matches reports whether a specialization plausibly covers a subject. Either string containing
// the other counts as a match, as does any table entry whose keyword appears in the subject and
// whose accepted keywords appear in the specialization.
func (t SpecializationTable) Matches(specialization, subject string) bool {
	field := strings.ToLower(strings.TrimSpace(specialization))
	subj := strings.ToLower(strings.TrimSpace(subject))
	if field == "" || subj == "" {
		return true
	}
	if strings.Contains(field, subj) || strings.Contains(subj, field) {
		return true
	}

	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !strings.Contains(subj, key) {
			continue
		}
		for _, accepted := range t[key] {
			if strings.Contains(field, accepted) {
				return true
			}
		}
	}
	return false
}
