package view

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/domain/client"
)

// ClientSort orders a client projection.
type ClientSort string

const (
	ClientSortName          ClientSort = "name"
	ClientSortLastContact   ClientSort = "last_contact"
	ClientSortPendingAmount ClientSort = "pending_amount"
	ClientSortCreatedAt     ClientSort = "created_at"
)

// Unassigned is the assignee filter value that selects clients with no
// employee.
const Unassigned = "unassigned"

// ClientQuery describes a client list request. Zero values mean "no filter"
// and name ascending.
type ClientQuery struct {
	Status     client.Status
	AssignedTo string
	Sort       ClientSort
	Desc       bool
}

// Validate checks the enum fields of q and applies defaults.
func (q *ClientQuery) Validate() error {
	if q.Status != "" && !slices.Contains(client.Statuses, q.Status) {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, q.Status)
	}
	switch q.Sort {
	case "":
		q.Sort = ClientSortName
	case ClientSortName, ClientSortLastContact, ClientSortPendingAmount, ClientSortCreatedAt:
	default:
		return fmt.Errorf("%w: unknown sort key %q", domain.ErrValidation, q.Sort)
	}
	return nil
}

// ProjectClients filters clients by q and returns a sorted copy.
func ProjectClients(clients []client.Client, q ClientQuery) ([]client.Client, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	out := make([]client.Client, 0, len(clients))
	for i := range clients {
		c := &clients[i]
		if q.Status != "" && c.Status != q.Status {
			continue
		}
		switch {
		case q.AssignedTo == "":
		case strings.EqualFold(q.AssignedTo, Unassigned):
			if c.AssignedTo != "" {
				continue
			}
		case c.AssignedTo != q.AssignedTo:
			continue
		}
		out = append(out, *c)
	}

	var less func(a, b client.Client) int
	switch q.Sort {
	case ClientSortLastContact:
		less = func(a, b client.Client) int { return a.LastContact.Compare(b.LastContact) }
	case ClientSortPendingAmount:
		less = func(a, b client.Client) int { return cmp.Compare(a.PendingAmount(), b.PendingAmount()) }
	case ClientSortCreatedAt:
		less = func(a, b client.Client) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		less = func(a, b client.Client) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	}
	if q.Desc {
		asc := less
		less = func(a, b client.Client) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, less)
	return out, nil
}

// VisibleTo narrows clients to what a viewer may see: admins see everything,
// employees only their own assignments.
func VisibleTo(clients []client.Client, userID string, admin bool) []client.Client {
	if admin {
		return slices.Clone(clients)
	}
	out := make([]client.Client, 0)
	for i := range clients {
		if clients[i].AssignedTo == userID {
			out = append(out, clients[i])
		}
	}
	return out
}

// ClientStats are the dashboard figures over a client collection.
type ClientStats struct {
	TotalClients      int                   `json:"total_clients"`
	ActiveClients     int                   `json:"active_clients"`
	MonthlyRecurring  float64               `json:"monthly_recurring_revenue"`
	ActiveProjects    int                   `json:"active_projects"`
	Prospects         int                   `json:"prospects"`
	PendingTotal      float64               `json:"pending_total"`
	UnassignedClients int                   `json:"unassigned_clients"`
	ByStatus          map[client.Status]int `json:"by_status"`
}

// Stats reduces clients into dashboard figures. PendingTotal is the sum of
// raw pending amounts, so overpayments reduce it.
func Stats(clients []client.Client) ClientStats {
	s := ClientStats{ByStatus: make(map[client.Status]int, len(client.Statuses))}
	for _, st := range client.Statuses {
		s.ByStatus[st] = 0
	}
	for i := range clients {
		c := &clients[i]
		s.TotalClients++
		s.ByStatus[c.Status]++
		switch c.Status {
		case client.StatusClient:
			s.ActiveClients++
			s.MonthlyRecurring += c.Subscription()
		case client.StatusProspect:
			s.Prospects++
		}
		if c.ProjectStatus == client.ProjectInProgress {
			s.ActiveProjects++
		}
		if c.AssignedTo == "" {
			s.UnassignedClients++
		}
		s.PendingTotal += c.PendingAmount()
	}
	return s
}
