package service

import (
	"context"
	"sort"
	"time"

	"github.com/agrotrack/livestock_tracker/internal/models"
	"github.com/agrotrack/livestock_tracker/internal/repo"
)

type ReportService struct {
	Repo *repo.GormRepo
}

type Summary struct {
	TotalShipments  int     `json:"total_shipments"`
	TotalHead       int     `json:"total_head"`
	AvgHead         float64 `json:"avg_head"`
	DistinctBatches int     `json:"distinct_batches"`
	DistinctOrigins int     `json:"distinct_origins"`
	DistinctDests   int     `json:"distinct_dests"`

	ShipmentsToday     int `json:"shipments_today"`
	HeadToday          int `json:"head_today"`
	ShipmentsYesterday int `json:"shipments_yesterday"`
	HeadYesterday      int `json:"head_yesterday"`
	ShipmentsWeek      int `json:"shipments_week"`
	HeadWeek           int `json:"head_week"`
	ShipmentsMonth     int `json:"shipments_month"`
	HeadMonth          int `json:"head_month"`

	AvgDurationMinutes float64 `json:"avg_duration_minutes"`
	AvgHeadPerHour     float64 `json:"avg_head_per_hour"`

	Trend7Days  float64 `json:"trend_7_days"`
	Trend30Days float64 `json:"trend_30_days"`
}

// Summary aggregates the whole shipment table the way the reporting dashboard
// consumes it: lifetime totals, trailing-window counts, loading efficiency,
// and short/long trend slopes.
func (s *ReportService) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	shipments, err := s.Repo.AllShipments(ctx)
	if err != nil {
		return nil, err
	}

	sum := &Summary{TotalShipments: len(shipments)}
	if len(shipments) == 0 {
		return sum, nil
	}

	today := dayOf(now)
	yesterday := today.AddDate(0, 0, -1)
	weekAgo := today.AddDate(0, 0, -7)
	monthAgo := today.AddDate(0, -1, 0)

	batches := map[string]struct{}{}
	origins := map[string]struct{}{}
	dests := map[string]struct{}{}

	var durationSum float64
	var durationN int
	var efficiencySum float64
	var efficiencyN int

	for _, sh := range shipments {
		sum.TotalHead += sh.NetHeadCount
		batches[sh.BatchCode] = struct{}{}
		origins[sh.OriginSite] = struct{}{}
		dests[sh.DestSite] = struct{}{}

		day := dayOf(sh.RecordedAt)
		if day.Equal(today) {
			sum.ShipmentsToday++
			sum.HeadToday += sh.NetHeadCount
		}
		if day.Equal(yesterday) {
			sum.ShipmentsYesterday++
			sum.HeadYesterday += sh.NetHeadCount
		}
		if !day.Before(weekAgo) {
			sum.ShipmentsWeek++
			sum.HeadWeek += sh.NetHeadCount
		}
		if !day.Before(monthAgo) {
			sum.ShipmentsMonth++
			sum.HeadMonth += sh.NetHeadCount
		}

		if dur := sh.LoadingEnd.Sub(sh.LoadingStart); dur > 0 {
			durationSum += dur.Minutes()
			durationN++
			efficiencySum += float64(sh.NetHeadCount) / dur.Hours()
			efficiencyN++
		}
	}

	sum.AvgHead = float64(sum.TotalHead) / float64(len(shipments))
	sum.DistinctBatches = len(batches)
	sum.DistinctOrigins = len(origins)
	sum.DistinctDests = len(dests)
	if durationN > 0 {
		sum.AvgDurationMinutes = durationSum / float64(durationN)
	}
	if efficiencyN > 0 {
		sum.AvgHeadPerHour = efficiencySum / float64(efficiencyN)
	}

	sum.Trend7Days = trendSlope(shipments, now, 7)
	sum.Trend30Days = trendSlope(shipments, now, 30)

	return sum, nil
}

// trendSlope fits head-count-per-day over the trailing window with ordinary
// least squares and returns the slope. Fewer than two distinct days is flat.
func trendSlope(shipments []models.Shipment, now time.Time, days int) float64 {
	cutoff := dayOf(now).AddDate(0, 0, -days)

	daily := map[time.Time]float64{}
	for _, sh := range shipments {
		day := dayOf(sh.RecordedAt)
		if day.Before(cutoff) {
			continue
		}
		daily[day] += float64(sh.NetHeadCount)
	}
	if len(daily) < 2 {
		return 0
	}

	ordered := make([]time.Time, 0, len(daily))
	for day := range daily {
		ordered = append(ordered, day)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	n := float64(len(ordered))
	var sumX, sumY, sumXY, sumXX float64
	for i, day := range ordered {
		x := float64(i)
		y := daily[day]
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
