package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchMembers_CaseInsensitiveExact(t *testing.T) {
	members := []GuildMember{
		{UserID: "1", DisplayName: "Aria"},
		{UserID: "2", DisplayName: "Borin"},
	}

	matched, unmatched := MatchMembers([]string{"aria", "BORIN"}, members)

	assert.Empty(t, unmatched)
	assert.Equal(t, []Match{
		{UserID: "1", DisplayName: "Aria"},
		{UserID: "2", DisplayName: "Borin"},
	}, matched)
}

func TestMatchMembers_NoFuzzyMatching(t *testing.T) {
	members := []GuildMember{{UserID: "1", DisplayName: "Aria"}}

	matched, unmatched := MatchMembers([]string{"Ari", "Aria2", "Aria"}, members)

	assert.Equal(t, []string{"Ari", "Aria2"}, unmatched)
	assert.Equal(t, []Match{{UserID: "1", DisplayName: "Aria"}}, matched)
}

func TestMatchMembers_ReportsDisplayNameNotOCRText(t *testing.T) {
	members := []GuildMember{{UserID: "1", DisplayName: "McTavish"}}

	matched, _ := MatchMembers([]string{"mctavish"}, members)

	assert.Len(t, matched, 1)
	assert.Equal(t, "McTavish", matched[0].DisplayName)
}

func TestMatchMembers_EmptyInputs(t *testing.T) {
	matched, unmatched := MatchMembers(nil, nil)
	assert.Empty(t, matched)
	assert.Empty(t, unmatched)

	matched, unmatched = MatchMembers([]string{"Aria"}, nil)
	assert.Empty(t, matched)
	assert.Equal(t, []string{"Aria"}, unmatched)
}
