package reconcile

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Candidate is the projection of a record the duplicate detector needs.
type Candidate struct {
	ID        snowflake.ID `json:"id"`
	Name      string       `json:"name"`
	Active    bool         `json:"active"`
	CreatedAt time.Time    `json:"created_at"`
}

// Group is one detected duplicate cluster: the record to keep and the
// records to remove.
type Group struct {
	Kept       Candidate   `json:"kept"`
	Duplicates []Candidate `json:"duplicates"`
}

// FindDuplicateGroups runs a pairwise greedy scan: each record joins at
// most one group, first match wins, and no transitive closure is computed.
// Two records that are each similar to a third but compared in an
// unfavourable order can be missed; that is accepted behavior for this
// heuristic, not a defect.
func FindDuplicateGroups(records []Candidate, threshold, containment float64, maxGroupSize int) []Group {
	var groups []Group
	claimed := make([]bool, len(records))

	for i := 0; i < len(records); i++ {
		if claimed[i] {
			continue
		}

		var members []Candidate
		for j := i + 1; j < len(records); j++ {
			if claimed[j] {
				continue
			}
			if Similarity(records[i].Name, records[j].Name, containment) > threshold {
				members = append(members, records[j])
				claimed[j] = true
				if maxGroupSize > 0 && len(members)+1 >= maxGroupSize {
					break
				}
			}
		}
		if len(members) == 0 {
			continue
		}
		claimed[i] = true

		members = append(members, records[i])
		kept, duplicates := rankGroup(members)
		groups = append(groups, Group{Kept: kept, Duplicates: duplicates})
	}

	return groups
}

// rankGroup orders members by (active desc, created_at desc) and splits
// off the winner. An active record is kept over an inactive one regardless
// of creation order.
func rankGroup(members []Candidate) (Candidate, []Candidate) {
	best := 0
	for i := 1; i < len(members); i++ {
		if ranksHigher(members[i], members[best]) {
			best = i
		}
	}

	kept := members[best]
	duplicates := make([]Candidate, 0, len(members)-1)
	for i, m := range members {
		if i != best {
			duplicates = append(duplicates, m)
		}
	}
	return kept, duplicates
}

func ranksHigher(a, b Candidate) bool {
	if a.Active != b.Active {
		return a.Active
	}
	return a.CreatedAt.After(b.CreatedAt)
}
