package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"namecard-agent/internal/domain"
)

func TestComputeStats_Empty(t *testing.T) {
	stats := computeStats(nil, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	require.Zero(t, stats.Total)
	require.Zero(t, stats.ThisMonth)
	require.Equal(t, "無", stats.TopCompany)
}

func TestComputeStats_CountsAndTopCompany(t *testing.T) {
	now := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	cards := map[string]domain.Card{
		"c1": {Company: "ACME", CreatedAt: "2026-09-01T08:00:00Z"},
		"c2": {Company: "ACME", CreatedAt: "2026-08-20T08:00:00Z"},
		"c3": {Company: "Globex", CreatedAt: "2026-09-10T08:00:00Z"},
		"c4": {Company: "N/A", CreatedAt: "2026-09-11T08:00:00Z"},
		"c5": {CreatedAt: "not-a-timestamp"},
	}

	stats := computeStats(cards, now)
	require.Equal(t, 5, stats.Total)
	require.Equal(t, 3, stats.ThisMonth)
	require.Equal(t, "ACME", stats.TopCompany)
}

func TestComputeStats_CompanyTieResolvesDeterministically(t *testing.T) {
	cards := map[string]domain.Card{
		"c1": {Company: "Beta"},
		"c2": {Company: "Alpha"},
	}
	stats := computeStats(cards, time.Now())
	require.Equal(t, "Alpha", stats.TopCompany)
}
