package ocr

import "strings"

// GuildMember is the slice of live Discord member state the matcher needs:
// the member id and their display name (nickname if set, else username).
type GuildMember struct {
	UserID      string
	DisplayName string
}

// Match is a candidate name resolved to a guild member.
type Match struct {
	UserID      string
	DisplayName string // display name as stored in Discord, not the OCR text
}

// MatchMembers resolves candidate names against the member list by exact
// case-insensitive display-name equality.  No fuzzy matching: "aria" matches
// a member named "Aria", "Ari" and "Aria2" do not.  Unmatched candidates are
// returned rather than dropped so callers can surface the misses.
func MatchMembers(candidates []string, members []GuildMember) (matched []Match, unmatched []string) {
	index := make(map[string]GuildMember, len(members))
	for _, m := range members {
		index[strings.ToLower(m.DisplayName)] = m
	}

	for _, name := range candidates {
		m, ok := index[strings.ToLower(name)]
		if !ok {
			unmatched = append(unmatched, name)
			continue
		}
		matched = append(matched, Match{UserID: m.UserID, DisplayName: m.DisplayName})
	}
	return matched, unmatched
}
