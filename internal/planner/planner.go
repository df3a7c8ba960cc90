// internal/planner/planner.go
package planner

import (
	"fmt"
	"sort"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
)

// DefaultSurplusFactor: a location donates only when stock strictly exceeds
// this multiple of its reorder threshold.
const DefaultSurplusFactor = 1.5

type donor struct {
	name     string
	surplus  int
	priority float64
}

type request struct {
	name     string
	needed   int
	priority int
	urgency  domain.RiskStatus
}

// Planner computes redistribution plans with a greedy priority match.
type Planner struct {
	medicine      string
	surplusFactor float64
}

// NewPlanner builds a Planner for a single-medicine planning context.
func NewPlanner(medicine string) *Planner {
	return &Planner{
		medicine:      medicine,
		surplusFactor: DefaultSurplusFactor,
	}
}

// Plan partitions the snapshot into surplus and deficit locations and
// greedily matches them, highest-priority deficit first. Proposals come out
// in the order the nested match generates them (deficit-major,
// surplus-minor); callers rely on that order for top-N views. Unmet need is
// left unmet, never an error.
func (p *Planner) Plan(assessments []domain.RiskAssessment, snapshot []domain.Location) []domain.TransferProposal {
	byName := make(map[string]domain.Location, len(snapshot))
	for _, loc := range snapshot {
		byName[loc.Name] = loc
	}

	var donors []donor
	var requests []request

	// Classification uses the snapshot's current stock and threshold, not
	// the forecast. Only assessed locations participate either way.
	for _, a := range assessments {
		loc, ok := byName[a.Location]
		if !ok {
			continue
		}

		if float64(loc.CurrentStock) > float64(loc.Threshold)*p.surplusFactor {
			donors = append(donors, donor{
				name:     loc.Name,
				surplus:  loc.CurrentStock - loc.Threshold,
				priority: 1 / float64(a.RiskScore+1),
			})
			continue
		}

		if a.Status.AtRisk() {
			needed := loc.Threshold - loc.CurrentStock
			if needed < 0 {
				needed = 0
			}
			requests = append(requests, request{
				name:     loc.Name,
				needed:   needed,
				priority: a.RiskScore,
				urgency:  a.Status,
			})
		}
	}

	// Stable sorts: equal priorities keep assessment order.
	sort.SliceStable(requests, func(i, j int) bool { return requests[i].priority > requests[j].priority })
	sort.SliceStable(donors, func(i, j int) bool { return donors[i].priority > donors[j].priority })

	var proposals []domain.TransferProposal

	for d := range requests {
		remaining := requests[d].needed

		for s := range donors {
			if remaining <= 0 {
				break
			}
			if donors[s].surplus <= 0 {
				continue
			}

			amount := remaining
			if donors[s].surplus < amount {
				amount = donors[s].surplus
			}

			proposals = append(proposals, domain.TransferProposal{
				From:     donors[s].name,
				To:       requests[d].name,
				Medicine: p.medicine,
				Amount:   amount,
				Urgency:  requests[d].urgency,
				Reason:   fmt.Sprintf("Prevent shortage at %s", requests[d].name),
			})

			donors[s].surplus -= amount
			remaining -= amount
		}
	}

	return proposals
}
