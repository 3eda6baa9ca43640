package party

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szymonsamus/gripendor/internal/model"
)

func preset(size int, roles ...model.PresetRole) model.Preset {
	return model.Preset{GuildID: "g1", Name: "raid", PartySize: size, Roles: roles}
}

func attendee(id, name string, roles ...string) model.EventAttendee {
	return model.EventAttendee{UserID: id, Username: name, Roles: roles}
}

func TestBuild_FillsRequiredSlotsFirst(t *testing.T) {
	p := preset(3,
		model.PresetRole{Role: "Tank", Count: 1},
		model.PresetRole{Role: "Healer", Count: 1},
	)
	attendees := []model.EventAttendee{
		attendee("1", "Aria", "Tank"),
		attendee("2", "Borin", "Healer"),
		attendee("3", "Cala"),
	}

	parties := Build(p, attendees)
	require.Len(t, parties, 1)
	require.Len(t, parties[0].Members, 3)

	assert.Equal(t, "Tank", parties[0].Members[0].Role)
	assert.Equal(t, "Aria", parties[0].Members[0].Username)
	assert.Equal(t, "Healer", parties[0].Members[1].Role)
	assert.Equal(t, FlexRole, parties[0].Members[2].Role)
}

func TestBuild_SplitsIntoCeilParties(t *testing.T) {
	p := preset(2)
	attendees := []model.EventAttendee{
		attendee("1", "Aria"),
		attendee("2", "Borin"),
		attendee("3", "Cala"),
	}

	parties := Build(p, attendees)
	require.Len(t, parties, 2, "3 attendees at size 2 make 2 parties")

	total := 0
	for _, party := range parties {
		assert.LessOrEqual(t, len(party.Members), 2)
		total += len(party.Members)
	}
	assert.Equal(t, 3, total, "everyone is placed exactly once")
}

func TestBuild_EveryAttendeePlacedOnce(t *testing.T) {
	p := preset(4, model.PresetRole{Role: "Tank", Count: 2})
	var attendees []model.EventAttendee
	for _, a := range []struct{ id, name, role string }{
		{"1", "Aria", "Tank"}, {"2", "Borin", "Tank"}, {"3", "Cala", "Tank"},
		{"4", "Doran", ""}, {"5", "Elia", ""}, {"6", "Finn", ""},
		{"7", "Gorm", ""}, {"8", "Hale", ""}, {"9", "Iris", ""},
	} {
		if a.role != "" {
			attendees = append(attendees, attendee(a.id, a.name, a.role))
		} else {
			attendees = append(attendees, attendee(a.id, a.name))
		}
	}

	parties := Build(p, attendees)
	require.Len(t, parties, 3)

	seen := make(map[string]int)
	for _, party := range parties {
		for _, m := range party.Members {
			seen[m.UserID]++
		}
	}
	assert.Len(t, seen, 9)
	for id, n := range seen {
		assert.Equal(t, 1, n, "attendee %s placed %d times", id, n)
	}
}

func TestBuild_ScarceRoleRunsOut(t *testing.T) {
	p := preset(2, model.PresetRole{Role: "Healer", Count: 1})
	attendees := []model.EventAttendee{
		attendee("1", "Aria", "Healer"),
		attendee("2", "Borin"),
		attendee("3", "Cala"),
		attendee("4", "Doran"),
	}

	parties := Build(p, attendees)
	require.Len(t, parties, 2)

	healers := 0
	for _, party := range parties {
		for _, m := range party.Members {
			if m.Role == "Healer" {
				healers++
			}
		}
	}
	assert.Equal(t, 1, healers, "only one healer exists; the second party goes without")
}

func TestBuild_MultiRoleAttendeeFillsFirstOpenSlot(t *testing.T) {
	p := preset(2,
		model.PresetRole{Role: "Tank", Count: 1},
		model.PresetRole{Role: "Healer", Count: 1},
	)
	attendees := []model.EventAttendee{
		attendee("1", "Aria", "Tank", "Healer"),
		attendee("2", "Borin", "Healer"),
	}

	parties := Build(p, attendees)
	require.Len(t, parties, 1)
	assert.Equal(t, "Tank", parties[0].Members[0].Role)
	assert.Equal(t, "Aria", parties[0].Members[0].Username)
	assert.Equal(t, "Healer", parties[0].Members[1].Role)
	assert.Equal(t, "Borin", parties[0].Members[1].Username)
}

func TestBuild_EmptyInputs(t *testing.T) {
	assert.Nil(t, Build(preset(4), nil))
	assert.Nil(t, Build(model.Preset{PartySize: 0}, []model.EventAttendee{attendee("1", "Aria")}))
}
