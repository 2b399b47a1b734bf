package extract

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExtractSuccessRanges(t *testing.T) {
	sim := NewSimulatorWith(0, 0, 0, 1)
	for i := 0; i < 50; i++ {
		res, err := sim.Extract(context.Background(), "doc-1", "lease.pdf")
		if err != nil {
			t.Fatalf("failure rate 0 must never fail: %v", err)
		}
		if res.QualityScore < 70 || res.QualityScore > 95 {
			t.Fatalf("quality score out of range: %d", res.QualityScore)
		}
		d := res.Data
		if d.ColdRent < 500 || d.ColdRent > 2000 {
			t.Fatalf("cold rent out of range: %d", d.ColdRent)
		}
		if d.WarmRent <= d.ColdRent || d.WarmRent > d.ColdRent+400 {
			t.Fatalf("warm rent must exceed cold rent by 100-400: cold=%d warm=%d", d.ColdRent, d.WarmRent)
		}
		if d.Name == "" || d.Surname == "" || d.AddressCity == "" {
			t.Fatalf("required fields empty: %+v", d)
		}
		if d.Deposit != nil && (*d.Deposit < d.ColdRent*2 || *d.Deposit > d.ColdRent*4) {
			t.Fatalf("deposit out of range: %d for cold rent %d", *d.Deposit, d.ColdRent)
		}
		for field, conf := range d.Confidence {
			if conf < 0.65 || conf > 0.98 {
				t.Fatalf("confidence for %s out of range: %f", field, conf)
			}
		}
		if _, ok := d.Confidence["name"]; !ok {
			t.Fatalf("confidence map missing required field")
		}
		if _, err := time.Parse("2006-01-02", d.Date); err != nil {
			t.Fatalf("bad lease date %q: %v", d.Date, err)
		}
	}
}

func TestExtractAlwaysFails(t *testing.T) {
	sim := NewSimulatorWith(1, 0, 0, 1)
	_, err := sim.Extract(context.Background(), "doc-1", "lease.pdf")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if err.Error() != "Extraction failed: Please upload again" {
		t.Fatalf("failure message is part of the contract, got %q", err.Error())
	}
}

func TestExtractDeterministicUnderSeed(t *testing.T) {
	a, _ := NewSimulatorWith(0, 0, 0, 42).Extract(context.Background(), "d", "f.pdf")
	b, _ := NewSimulatorWith(0, 0, 0, 42).Extract(context.Background(), "d", "f.pdf")
	if a.Data.Name != b.Data.Name || a.Data.ColdRent != b.Data.ColdRent || a.QualityScore != b.QualityScore {
		t.Fatalf("same seed must generate the same record: %+v vs %+v", a.Data, b.Data)
	}
}

func TestExtractHonorsContext(t *testing.T) {
	sim := NewSimulatorWith(0, time.Minute, 2*time.Minute, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := sim.Extract(ctx, "doc-1", "lease.pdf")
		done <- err
	}()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Extract ignored cancellation")
	}
}

func TestExtractDelayBounds(t *testing.T) {
	sim := NewSimulatorWith(0, 30*time.Millisecond, 60*time.Millisecond, 1)
	start := time.Now()
	if _, err := sim.Extract(context.Background(), "doc-1", "lease.pdf"); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("returned before the minimum delay: %v", elapsed)
	}
}
