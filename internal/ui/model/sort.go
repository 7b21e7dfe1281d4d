package model

import (
	"sort"
	"strings"
)

// SortUsers orders users by ascending rank, then case-insensitive name.
func SortUsers(users []User) {
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].Rank != users[j].Rank {
			return users[i].Rank < users[j].Rank
		}
		return strings.ToUpper(users[i].Name) < strings.ToUpper(users[j].Name)
	})
}

// SortEvents orders events by ascending start time.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}

// FilterForRank returns the users holding exactly the given rank, in input order.
func FilterForRank(rank Rank, users []User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if u.Rank == rank {
			out = append(out, u)
		}
	}
	return out
}
