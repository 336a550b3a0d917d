package cwn

import (
	"testing"
)

func testRecords() []LocationRecord {
	return []LocationRecord{
		{Provider: "a", Distance: 10, HasAppointments: true},
		{Provider: "b", Distance: 50, HasAppointments: true},
		{Provider: "c", Distance: 51, HasAppointments: true},
		{Provider: "d", Distance: UnknownDistance, HasAppointments: true},
		{Provider: "e", Distance: 5, HasAppointments: false},
		{Provider: "f", Distance: 0, HasAppointments: true},
	}
}

func providers(records []LocationRecord) string {
	s := ""
	for _, record := range records {
		s += record.Provider
	}
	return s
}

func TestFilterKnownDistance(t *testing.T) {
	if got := providers(FilterKnownDistance(testRecords())); got != "abcef" {
		t.Errorf("Expected abcef, got %s", got)
		return
	}
}

func TestFilterWithinDistanceInclusive(t *testing.T) {
	if got := providers(FilterWithinDistance(testRecords(), 50)); got != "abef" {
		t.Errorf("Expected abef, got %s", got)
		return
	}

	if got := providers(FilterWithinDistance(testRecords(), 0)); got != "f" {
		t.Errorf("Expected f, got %s", got)
		return
	}
}

func TestFilterAvailable(t *testing.T) {
	if got := providers(FilterAvailable(testRecords())); got != "abcdf" {
		t.Errorf("Expected abcdf, got %s", got)
		return
	}
}

func TestApplyFilters(t *testing.T) {
	for _, policy := range []DistancePolicy{DistancePolicyStrict, DistancePolicySentinel} {
		filtered, err := ApplyFilters(testRecords(), 50, policy)
		if err != nil {
			t.Errorf("Unexpected Error: %v", err)
			return
		}

		if got := providers(filtered); got != "abf" {
			t.Errorf("%s: expected abf, got %s", policy, got)
			return
		}
	}

	// only the sentinel policy lets an unknown distance through a huge limit
	filtered, _ := ApplyFilters(testRecords(), UnknownDistance, DistancePolicySentinel)
	if got := providers(filtered); got != "abcdf" {
		t.Errorf("Expected abcdf, got %s", got)
		return
	}

	filtered, _ = ApplyFilters(testRecords(), UnknownDistance, DistancePolicyStrict)
	if got := providers(filtered); got != "abcf" {
		t.Errorf("Expected abcf, got %s", got)
		return
	}

	if _, err := ApplyFilters(testRecords(), 50, DistancePolicy("bogus")); err == nil {
		t.Errorf("Expected error for unknown policy, got nil")
		return
	}
}

func TestApplyFiltersDoesNotModifyInput(t *testing.T) {
	records := testRecords()
	_, _ = ApplyFilters(records, 10, DistancePolicyStrict)

	if got := providers(records); got != "abcdef" {
		t.Errorf("Expected input untouched, got %s", got)
		return
	}
}
