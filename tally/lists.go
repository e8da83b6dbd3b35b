// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"sort"

	"github.com/danielhkuo/election-night/models"
)

// AssignListSeats walks each party list in order. Riding winners are marked
// elected; the next owed[party] candidates who did not win a riding take the
// list seats; everyone after that is not elected. Owed seats the list cannot
// fill become placeholders, and riding winners missing from their party's
// list are appended with position 0.
func AssignListSeats(lists []models.PartyList, elected map[string]models.ElectedCandidate, owed map[string]int) []models.ListEntry {
	var entries []models.ListEntry

	for _, list := range lists {
		seats := max(owed[list.Party], 0)
		onList := make(map[string]bool, len(list.Candidates))
		filled := 0

		for i, candidate := range list.Candidates {
			onList[candidate] = true
			entry := models.ListEntry{
				Party:     list.Party,
				Position:  i + 1,
				Candidate: candidate,
			}
			switch won, ok := elected[candidate]; {
			case ok:
				entry.Status = models.ListStatusElected
				entry.Riding = won.Riding
			case filled < seats:
				entry.Status = models.ListStatusListSeat
				filled++
			default:
				entry.Status = models.ListStatusNotElected
			}
			entries = append(entries, entry)
		}

		for ; filled < seats; filled++ {
			entries = append(entries, models.ListEntry{
				Party:  list.Party,
				Status: models.ListStatusPlaceholder,
			})
		}

		var offList []string
		for candidate, won := range elected {
			if won.Party == list.Party && !onList[candidate] {
				offList = append(offList, candidate)
			}
		}
		sort.Strings(offList)
		for _, candidate := range offList {
			entries = append(entries, models.ListEntry{
				Party:     list.Party,
				Candidate: candidate,
				Status:    models.ListStatusElected,
				Riding:    elected[candidate].Riding,
			})
		}
	}

	return entries
}
