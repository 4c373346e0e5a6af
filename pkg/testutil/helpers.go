// Package testutil provides common utility functions for testing.
package testutil

import (
	"testing"

	"github.com/iwvelando/anticrisis-view/internal/snapshot"
)

// FindEntry finds an entry by key in the entries slice.
// Returns a pointer to the entry if found, nil otherwise.
func FindEntry(entries []snapshot.Entry, key string) *snapshot.Entry {
	for i := range entries {
		if entries[i].Key == key {
			return &entries[i]
		}
	}
	return nil
}

// Snapshot builds a populated snapshot for org 7, period 42 labelled
// "January 2026", without a financial model.
func Snapshot(tb testing.TB) *snapshot.Snapshot {
	tb.Helper()
	return SnapshotFor(tb, 7, 42)
}

// SnapshotFor builds the same snapshot as Snapshot for another pair.
func SnapshotFor(tb testing.TB, orgID, periodID int64) *snapshot.Snapshot {
	tb.Helper()
	s, err := snapshot.New(snapshot.Parts{
		Period: snapshot.Period{ID: periodID, OrganizationID: orgID, Type: "month", Label: "January 2026"},
		Balance: snapshot.NewSection(
			snapshot.Entry{Key: "cash", Value: 1000},
			snapshot.Entry{Key: "payables", Value: 250.5},
		),
		IncomeExpense: snapshot.NewSection(
			snapshot.Entry{Key: "revenue", Value: 5000},
			snapshot.Entry{Key: "profit", Value: 120},
		),
		CashFlow:     snapshot.NewSection(snapshot.Entry{Key: "cash_end", Value: 900}),
		Coefficients: snapshot.NewSection(snapshot.Entry{Key: "current_ratio", Value: 1.4}),
		Crisis: &snapshot.Crisis{
			Code:       "liquidity",
			Name:       "Liquidity Crisis",
			Confidence: 0.82,
			Reasoning:  "Low cash reserves",
		},
	})
	if err != nil {
		tb.Fatalf("snapshot.New() error = %v", err)
	}
	return s
}
