package extract

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"leaseintake/models"
)

var firstNames = []string{"Max", "Anna", "Thomas", "Julia", "Michael", "Sarah", "Lukas", "Emma", "Felix", "Laura"}
var lastNames = []string{"Müller", "Schmidt", "Schneider", "Fischer", "Weber", "Meyer", "Wagner", "Becker", "Schulz", "Hoffmann"}
var streets = []string{"Hauptstraße", "Bahnhofstraße", "Kirchstraße", "Schulstraße", "Gartenstraße", "Bergstraße", "Waldstraße", "Lindenstraße"}
var cities = []string{"München", "Berlin", "Hamburg", "Frankfurt", "Köln", "Stuttgart", "Düsseldorf", "Leipzig", "Dortmund", "Essen"}
var rentIncreaseTypes = []string{"Staffelmiete", "Indexmiete", "Festmiete", "Wertsicherungsklausel"}
var landlords = []string{"Hausverwaltung GmbH", "Immobilien AG", "Wohnbau Gesellschaft", "Private Vermietung"}

// Simulator fakes a flaky extraction service: randomized latency, a
// configurable failure rate, and a plausible random lease record. The input
// filename is opaque; output does not depend on it.
type Simulator struct {
	FailureRate float64
	MinDelay    time.Duration
	MaxDelay    time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator builds a simulator with the production defaults: 1-2s delay
// and a 5% failure rate.
func NewSimulator() *Simulator {
	return NewSimulatorWith(0.05, time.Second, 2*time.Second, time.Now().UnixNano())
}

// NewSimulatorWith pins every knob, for configuration and tests.
func NewSimulatorWith(failureRate float64, minDelay, maxDelay time.Duration, seed int64) *Simulator {
	return &Simulator{
		FailureRate: failureRate,
		MinDelay:    minDelay,
		MaxDelay:    maxDelay,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Extract sleeps for the simulated processing window, then returns either
// the injected failure or a fresh random lease record with quality in
// [70,95].
func (s *Simulator) Extract(ctx context.Context, documentID, filename string) (*Result, error) {
	s.mu.Lock()
	delay := s.MinDelay
	if s.MaxDelay > s.MinDelay {
		delay += time.Duration(s.rng.Int63n(int64(s.MaxDelay - s.MinDelay)))
	}
	failed := s.rng.Float64() < s.FailureRate
	s.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if failed {
		return nil, ErrExtractionFailed
	}

	s.mu.Lock()
	data := generateLeaseData(s.rng)
	score := s.randomNumber(70, 95)
	s.mu.Unlock()

	return &Result{
		Data:         data,
		QualityScore: score,
		ProcessedAt:  time.Now(),
	}, nil
}

// randomNumber requires s.mu held.
func (s *Simulator) randomNumber(min, max int) int {
	return randomNumber(s.rng, min, max)
}

func randomItem(rng *rand.Rand, items []string) string {
	return items[rng.Intn(len(items))]
}

func randomNumber(rng *rand.Rand, min, max int) int {
	return rng.Intn(max-min+1) + min
}

// randomConfidence skews high: 80% of fields land in [0.80,0.98], the rest
// in [0.65,0.75] so the review UI has something to flag.
func randomConfidence(rng *rand.Rand) float64 {
	if rng.Float64() < 0.8 {
		return float64(randomNumber(rng, 80, 98)) / 100
	}
	return float64(randomNumber(rng, 65, 75)) / 100
}

func generateLeaseData(rng *rand.Rand) *models.ExtractedData {
	coldRent := randomNumber(rng, 500, 2000)
	warmRent := coldRent + randomNumber(rng, 100, 400)
	date := fmt.Sprintf("%d-%02d-%02d",
		randomNumber(rng, 2019, 2024), randomNumber(rng, 1, 12), randomNumber(rng, 1, 28))

	data := &models.ExtractedData{
		Name:               randomItem(rng, firstNames),
		Surname:            randomItem(rng, lastNames),
		AddressStreet:      randomItem(rng, streets),
		AddressHouseNumber: fmt.Sprintf("%d", randomNumber(rng, 1, 150)),
		AddressZipCode:     fmt.Sprintf("%d", 10000+randomNumber(rng, 0, 89999)),
		AddressCity:        randomItem(rng, cities),
		WarmRent:           warmRent,
		ColdRent:           coldRent,
		RentIncreaseType:   randomItem(rng, rentIncreaseTypes),
		Date:               date,
		IsActive:           rng.Float64() > 0.2,
		Confidence:         map[string]float64{},
	}
	for _, field := range []string{
		"name", "surname", "address_street", "address_house_number",
		"address_zip_code", "address_city", "warm_rent", "cold_rent",
		"rent_increase_type", "date", "is_active",
	} {
		data.Confidence[field] = randomConfidence(rng)
	}

	if rng.Float64() > 0.3 {
		deposit := coldRent * randomNumber(rng, 2, 4)
		data.Deposit = &deposit
		data.Confidence["deposit"] = randomConfidence(rng)
	}
	if rng.Float64() > 0.3 {
		term := randomNumber(rng, 12, 36)
		data.ContractTermMonths = &term
		data.Confidence["contract_term_months"] = randomConfidence(rng)
	}
	if rng.Float64() > 0.3 {
		notice := randomNumber(rng, 1, 6)
		data.NoticePeriodMonths = &notice
		data.Confidence["notice_period_months"] = randomConfidence(rng)
	}
	if rng.Float64() > 0.3 {
		data.LandlordEntity = randomItem(rng, landlords)
		data.Confidence["landlord_entity"] = randomConfidence(rng)
	}
	return data
}
