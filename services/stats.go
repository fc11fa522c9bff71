// services/stats.go
package services

import (
	"bytes"
	"encoding/json"
	"math"

	"deck-tracker-system/models"
)

// DeckStats is the full win/loss breakdown returned by GET /decks/:id/stats.
type DeckStats struct {
	TotalMatches     int           `json:"total_matches"`
	Wins             int           `json:"wins"`
	Losses           int           `json:"losses"`
	WinRate          float64       `json:"win_rate"`
	BadGames         int           `json:"bad_games"`
	WentFirstWins    int           `json:"went_first_wins"`
	WentFirstLosses  int           `json:"went_first_losses"`
	WentSecondWins   int           `json:"went_second_wins"`
	WentSecondLosses int           `json:"went_second_losses"`
	AvgMulligans     float64       `json:"avg_mulligans"`
	TotalMulligans   int           `json:"total_mulligans"`
	OpponentStats    OpponentStats `json:"opponent_stats"`
}

// OpponentRecord accumulates one opponent deck's results. Names are the raw,
// untrimmed, case-sensitive strings the user typed: "Gardevoir" and "gardevoir"
// are distinct buckets on purpose.
type OpponentRecord struct {
	Name   string `json:"-"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Total  int    `json:"total"`
}

// OpponentStats marshals as a JSON object keyed by opponent name, preserving
// the order opponents were first encountered in the match set.
type OpponentStats []*OpponentRecord

func (os OpponentStats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rec := range os {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(rec.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(*rec)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (os OpponentStats) Get(name string) *OpponentRecord {
	for _, rec := range os {
		if rec.Name == name {
			return rec
		}
	}
	return nil
}

// ComputeDeckStats aggregates a deck's full match set. Pure and zero-safe:
// an empty match set yields all-zero stats, never a division fault.
func ComputeDeckStats(matches []models.Match) DeckStats {
	stats := DeckStats{
		TotalMatches:  len(matches),
		OpponentStats: OpponentStats{},
	}

	for _, m := range matches {
		if m.Result == models.ResultWin {
			stats.Wins++
			if m.WentFirst {
				stats.WentFirstWins++
			} else {
				stats.WentSecondWins++
			}
		} else {
			if m.WentFirst {
				stats.WentFirstLosses++
			} else {
				stats.WentSecondLosses++
			}
		}
		if m.BadGame {
			stats.BadGames++
		}
		stats.TotalMulligans += m.MulliganCount

		rec := stats.OpponentStats.Get(m.OpponentDeckName)
		if rec == nil {
			rec = &OpponentRecord{Name: m.OpponentDeckName}
			stats.OpponentStats = append(stats.OpponentStats, rec)
		}
		rec.Total++
		if m.Result == models.ResultWin {
			rec.Wins++
		} else {
			rec.Losses++
		}
	}

	stats.Losses = stats.TotalMatches - stats.Wins
	if stats.TotalMatches > 0 {
		stats.WinRate = round2(float64(stats.Wins) / float64(stats.TotalMatches) * 100)
		stats.AvgMulligans = round2(float64(stats.TotalMulligans) / float64(stats.TotalMatches))
	}

	return stats
}

// ComputeDeckSummary is the lightweight variant attached to dashboard deck
// listings (win rate rounded to 1 decimal there, matching the dashboard UI).
func ComputeDeckSummary(matches []models.Match) *models.DeckSummary {
	summary := &models.DeckSummary{TotalMatches: len(matches)}
	for _, m := range matches {
		if m.Result == models.ResultWin {
			summary.Wins++
		}
	}
	summary.Losses = summary.TotalMatches - summary.Wins
	if summary.TotalMatches > 0 {
		summary.WinRate = round1(float64(summary.Wins) / float64(summary.TotalMatches) * 100)
	}
	return summary
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
