// Package party generates balanced parties from a saved preset and the list
// of members who RSVPed yes to an event.
package party

import (
	"github.com/szymonsamus/gripendor/internal/model"
)

// Assignment is one member placed into a party under a role label.  Members
// who fill no required slot are placed as "Flex".
type Assignment struct {
	UserID   string `json:"user_id"`
	Username string `json:"name"`
	Role     string `json:"role"`
}

// Party is one generated group of at most the preset's party size.
type Party struct {
	Members []Assignment `json:"members"`
}

// FlexRole labels members distributed into leftover slots.
const FlexRole = "Flex"

// Build splits attendees into ceil(n/size) parties, filling each party's
// required role slots first and distributing the remainder round-robin.
// Assignment is deterministic: attendees are consumed in input order, so the
// caller controls fairness by ordering the slice.  An attendee holding
// several of the preset's roles fills the first open slot that wants one of
// them.
func Build(preset model.Preset, attendees []model.EventAttendee) []Party {
	if len(attendees) == 0 || preset.PartySize < 1 {
		return nil
	}

	numParties := (len(attendees) + preset.PartySize - 1) / preset.PartySize
	parties := make([]Party, numParties)
	used := make([]bool, len(attendees))

	// Required role slots, one party at a time.
	for p := range parties {
		for _, slot := range preset.Roles {
			for filled := 0; filled < slot.Count; filled++ {
				if len(parties[p].Members) >= preset.PartySize {
					break
				}
				idx := takeWithRole(attendees, used, slot.Role)
				if idx < 0 {
					break // nobody left holding this role
				}
				used[idx] = true
				parties[p].Members = append(parties[p].Members, Assignment{
					UserID:   attendees[idx].UserID,
					Username: attendees[idx].Username,
					Role:     slot.Role,
				})
			}
		}
	}

	// Distribute everyone left round-robin into parties with open slots.
	p := 0
	for i, a := range attendees {
		if used[i] {
			continue
		}
		for len(parties[p].Members) >= preset.PartySize {
			p = (p + 1) % numParties
		}
		parties[p].Members = append(parties[p].Members, Assignment{
			UserID:   a.UserID,
			Username: a.Username,
			Role:     FlexRole,
		})
		p = (p + 1) % numParties
	}

	return parties
}

func takeWithRole(attendees []model.EventAttendee, used []bool, role string) int {
	for i, a := range attendees {
		if used[i] {
			continue
		}
		for _, r := range a.Roles {
			if r == role {
				return i
			}
		}
	}
	return -1
}
