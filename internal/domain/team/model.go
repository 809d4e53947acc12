package team

import "strings"

// Team is an NBA franchise as reported by the data provider.
type Team struct {
	ID           int64
	Conference   string
	Division     string
	City         string
	Name         string
	FullName     string
	Abbreviation string
}

// MatchesAbbreviation is an exact, case-insensitive abbreviation match.
func (t Team) MatchesAbbreviation(query string) bool {
	query = strings.TrimSpace(query)
	return query != "" && strings.EqualFold(t.Abbreviation, query)
}

// Matches reports whether a free-text query names this team: exact abbreviation,
// or a case-insensitive substring of the city, short name or full name.
func (t Team) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return false
	}
	if t.MatchesAbbreviation(query) {
		return true
	}
	for _, field := range []string{t.City, t.Name, t.FullName} {
		if field != "" && strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
