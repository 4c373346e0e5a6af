package backend

import (
	"context"
	"fmt"

	"github.com/iwvelando/anticrisis-view/internal/snapshot"
)

// Fetch names of the remediation plan reads.
const (
	PlansFetch = "plans"
	PlanFetch  = "plan"
)

// PlanItem is one step of a remediation plan.
type PlanItem struct {
	ID        int64               `json:"id"`
	PlanID    int64               `json:"plan_id"`
	Title     string              `json:"title"`
	Stage     string              `json:"stage"`
	DueDate   *snapshot.Timestamp `json:"due_date,omitempty"`
	Status    string              `json:"status"`
	Completed bool                `json:"completed"`
	SortOrder int                 `json:"sort_order"`
}

// Plan is a remediation plan of an organization, optionally aimed at one
// crisis type. Items arrive in their sort order.
type Plan struct {
	ID             int64               `json:"id"`
	OrganizationID int64               `json:"organization_id"`
	CrisisTypeCode string              `json:"crisis_type_code"`
	Title          string              `json:"title"`
	CreatedAt      *snapshot.Timestamp `json:"created_at,omitempty"`
	Items          []PlanItem          `json:"items"`
}

// Done counts the completed items.
func (p Plan) Done() int {
	n := 0
	for _, it := range p.Items {
		if it.Completed {
			n++
		}
	}
	return n
}

func plansPath(orgID int64) string {
	return fmt.Sprintf("/orgs/%d/anticrisis/plans", orgID)
}

// Plans lists the remediation plans of an organization, newest first.
func (c *Client) Plans(ctx context.Context, orgID int64) ([]Plan, error) {
	var out []Plan
	if err := c.get(ctx, PlansFetch, plansPath(orgID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Plan fetches one remediation plan with its items.
func (c *Client) Plan(ctx context.Context, orgID, planID int64) (Plan, error) {
	var out Plan
	if err := c.get(ctx, PlanFetch, fmt.Sprintf("%s/%d", plansPath(orgID), planID), &out); err != nil {
		return Plan{}, err
	}
	return out, nil
}
