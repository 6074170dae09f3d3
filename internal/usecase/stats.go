package usecase

import (
	"time"

	"namecard-agent/internal/domain"
)

// Stats summarizes a user's stored cards for the "stats" command.
type Stats struct {
	Total      int
	ThisMonth  int
	TopCompany string
}

// computeStats folds over the user's cards: total count, cards created in the
// current calendar month, and the most frequent company. Ties on company
// frequency resolve to the lexicographically smaller name so the reply is
// stable.
func computeStats(cards map[string]domain.Card, now time.Time) Stats {
	stats := Stats{Total: len(cards), TopCompany: "無"}

	counts := make(map[string]int)
	year, month := now.Year(), now.Month()
	for _, card := range cards {
		if created, err := time.Parse(time.RFC3339, card.CreatedAt); err == nil {
			if created.Year() == year && created.Month() == month {
				stats.ThisMonth++
			}
		}
		if card.Company != "" && card.Company != "N/A" {
			counts[card.Company]++
		}
	}

	best := 0
	for company, n := range counts {
		if n > best || (n == best && company < stats.TopCompany) {
			best = n
			stats.TopCompany = company
		}
	}
	return stats
}
