// services/test_results.go
package services

import (
	"time"

	"deck-tracker-system/models"
)

// TestResultsInput is one hand simulator batch. MulliganPercentage is accepted
// for wire compatibility but recomputed from the merged counts, never trusted.
type TestResultsInput struct {
	TotalHands         int     `json:"total_hands"`
	MulliganCount      int     `json:"mulligan_count"`
	MulliganPercentage float64 `json:"mulligan_percentage"`
	AvgPokemon         float64 `json:"avg_pokemon"`
	AvgTrainer         float64 `json:"avg_trainer"`
	AvgEnergy          float64 `json:"avg_energy"`
	AvgBasicPokemon    float64 `json:"avg_basic_pokemon"`
}

// AccumulateTestResults merges a batch into a deck's running averages using
// hand-count weighting: each prior mean is expanded back to its implied total,
// the batch totals are added, and new means are taken over the combined hand
// count. existing may be nil (first batch since the decklist last changed).
func AccumulateTestResults(existing *models.TestResults, batch TestResultsInput, now time.Time) models.TestResults {
	var oldHands, oldMulligans int
	var oldPokemon, oldTrainer, oldEnergy, oldBasic float64

	if existing != nil {
		oldHands = existing.TotalHands
		oldMulligans = existing.MulliganCount
		oldPokemon = existing.AvgPokemon * float64(oldHands)
		oldTrainer = existing.AvgTrainer * float64(oldHands)
		oldEnergy = existing.AvgEnergy * float64(oldHands)
		oldBasic = existing.AvgBasicPokemon * float64(oldHands)
	}

	newHands := oldHands + batch.TotalHands
	newMulligans := oldMulligans + batch.MulliganCount
	newPokemon := oldPokemon + batch.AvgPokemon*float64(batch.TotalHands)
	newTrainer := oldTrainer + batch.AvgTrainer*float64(batch.TotalHands)
	newEnergy := oldEnergy + batch.AvgEnergy*float64(batch.TotalHands)
	newBasic := oldBasic + batch.AvgBasicPokemon*float64(batch.TotalHands)

	merged := models.TestResults{
		TotalHands:    newHands,
		MulliganCount: newMulligans,
		LastTested:    now,
	}
	if newHands > 0 {
		merged.MulliganPercentage = round1(float64(newMulligans) / float64(newHands) * 100)
		merged.AvgPokemon = round1(newPokemon / float64(newHands))
		merged.AvgTrainer = round1(newTrainer / float64(newHands))
		merged.AvgEnergy = round1(newEnergy / float64(newHands))
		merged.AvgBasicPokemon = round1(newBasic / float64(newHands))
	}
	return merged
}
