package domain

import (
	"cmp"
	"slices"

	"tickevo.app/backend/internal/model"
)

// SortTickets orders tickets for the list view: High priority first, then
// oldest first. Title and ID break ties so the order is total.
func SortTickets(tickets []model.Ticket) {
	slices.SortFunc(tickets, func(a, b model.Ticket) int {
		if c := cmp.Compare(b.Priority.Weight(), a.Priority.Weight()); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
