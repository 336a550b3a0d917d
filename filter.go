package cwn

import "fmt"

// DistancePolicy decides what happens to locations whose distance could not
// be computed
type DistancePolicy string

const (
	// drop unknown-distance locations before the distance filter
	DistancePolicyStrict DistancePolicy = "strict"
	// keep them with UnknownDistance and let the distance filter exclude them
	DistancePolicySentinel DistancePolicy = "sentinel"
)

func (p DistancePolicy) Valid() bool {
	return p == DistancePolicyStrict || p == DistancePolicySentinel
}

func FilterKnownDistance(records []LocationRecord) []LocationRecord {
	filtered := make([]LocationRecord, 0, len(records))
	for _, record := range records {
		if record.DistanceKnown() {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// FilterWithinDistance keeps records at most maxDistance miles away
func FilterWithinDistance(records []LocationRecord, maxDistance int) []LocationRecord {
	filtered := make([]LocationRecord, 0, len(records))
	for _, record := range records {
		if record.Distance <= maxDistance {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

func FilterAvailable(records []LocationRecord) []LocationRecord {
	filtered := make([]LocationRecord, 0, len(records))
	for _, record := range records {
		if record.HasAppointments {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

func ApplyFilters(records []LocationRecord, maxDistance int, policy DistancePolicy) ([]LocationRecord, error) {
	switch policy {
	case DistancePolicyStrict:
		records = FilterKnownDistance(records)
	case DistancePolicySentinel:
	default:
		return nil, fmt.Errorf("Unknown distance policy: %s", policy)
	}

	nearby := FilterWithinDistance(records, maxDistance)
	available := FilterAvailable(nearby)

	Log.Debugf("%d locations within %d miles, %d with appointments", len(nearby), maxDistance, len(available))

	return available, nil
}
