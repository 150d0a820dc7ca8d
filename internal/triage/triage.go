// Package triage partitions and orders bookings for the admin view.
// All functions are pure: inputs are never mutated.
package triage

import (
	"sort"

	"granbokning/internal/models"
)

// GroupByDate buckets bookings by pickup date, one group per distinct value.
// Every booking lands in exactly one group.
func GroupByDate(bookings []*models.Booking) map[string][]*models.Booking {
	groups := make(map[string][]*models.Booking)
	for _, b := range bookings {
		groups[b.PickupDate] = append(groups[b.PickupDate], b)
	}
	return groups
}

// OrderForDisplay returns a new slice with not-yet-collected bookings first,
// then collected ones; each partition is ordered by creation time, most
// recent submission first.
func OrderForDisplay(bookings []*models.Booking) []*models.Booking {
	out := append([]*models.Booking(nil), bookings...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PickedUp != out[j].PickedUp {
			return !out[i].PickedUp
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// FilterPickedUp returns collected bookings only, most recent first.
func FilterPickedUp(bookings []*models.Booking) []*models.Booking {
	var out []*models.Booking
	for _, b := range bookings {
		if b.PickedUp {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
