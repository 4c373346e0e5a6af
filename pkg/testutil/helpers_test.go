package testutil

import (
	"testing"

	"github.com/iwvelando/anticrisis-view/internal/snapshot"
)

func TestFindEntry(t *testing.T) {
	entries := []snapshot.Entry{
		{Key: "cash", Value: 1000},
		{Key: "payables", Value: 250.5},
		{Key: "cash_end", Value: 900},
	}

	tests := []struct {
		name          string
		searchKey     string
		expectFound   bool
		expectedValue float64
	}{
		{
			name:          "Find existing key",
			searchKey:     "cash",
			expectFound:   true,
			expectedValue: 1000,
		},
		{
			name:          "Find key with fraction",
			searchKey:     "payables",
			expectFound:   true,
			expectedValue: 250.5,
		},
		{
			name:          "Find longer key sharing a prefix",
			searchKey:     "cash_end",
			expectFound:   true,
			expectedValue: 900,
		},
		{
			name:        "Search for missing key",
			searchKey:   "goodwill",
			expectFound: false,
		},
		{
			name:        "Empty search key",
			searchKey:   "",
			expectFound: false,
		},
		{
			name:        "Case sensitive search",
			searchKey:   "Cash",
			expectFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindEntry(entries, tt.searchKey)

			if tt.expectFound {
				if result == nil {
					t.Errorf("FindEntry() expected to find key '%s' but got nil", tt.searchKey)
					return
				}
				if result.Key != tt.searchKey {
					t.Errorf("FindEntry() returned key '%s', expected '%s'", result.Key, tt.searchKey)
				}
				if result.Value != tt.expectedValue {
					t.Errorf("FindEntry() returned value %v, expected %v", result.Value, tt.expectedValue)
				}
			} else if result != nil {
				t.Errorf("FindEntry() expected nil for key '%s' but got '%s'", tt.searchKey, result.Key)
			}
		})
	}
}

func TestFindEntryNilEntries(t *testing.T) {
	if result := FindEntry(nil, "cash"); result != nil {
		t.Errorf("FindEntry() with nil entries should return nil, got %v", result)
	}
}

func TestSnapshotFixture(t *testing.T) {
	s := Snapshot(t)

	if s.Period.ID != 42 || s.OrganizationID() != 7 {
		t.Fatalf("unexpected identity org %d period %d", s.OrganizationID(), s.Period.ID)
	}
	if s.FinModel != nil {
		t.Fatal("fixture must not carry a financial model")
	}
	if got := FindEntry(s.Balance.Entries(), "cash"); got == nil || got.Value != 1000 {
		t.Fatalf("unexpected cash entry %+v", got)
	}

	other := SnapshotFor(t, 3, 9)
	if other.Period.ID != 9 || other.OrganizationID() != 3 {
		t.Fatalf("unexpected identity org %d period %d", other.OrganizationID(), other.Period.ID)
	}
}
