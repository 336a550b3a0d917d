package cwn

import (
	"encoding/json"
	"fmt"
	"math"
)

// UnknownDistance is assigned when either zip code is missing from the
// gazetteer; it exceeds any realistic maximum distance
const UnknownDistance = math.MaxInt32

type LocationRecord struct {
	Provider        string
	Address         string
	ZipCode         string
	Distance        int
	HasAppointments bool
	Url             string
}

func (r LocationRecord) DistanceKnown() bool {
	return r.Distance != UnknownDistance
}

// DecodeFeature unmarshals one entry of the feed's feature list
func DecodeFeature(index int, raw json.RawMessage) (RawFeature, error) {
	feature := RawFeature{}
	if err := json.Unmarshal(raw, &feature); err != nil {
		return RawFeature{}, &MalformedFeatureError{
			Index:  index,
			Reason: err.Error(),
		}
	}

	return feature, nil
}

// ParseFeature normalizes one feed feature. index is only used to identify
// the feature in errors.
func ParseFeature(index int, feature RawFeature, srcZipCode string, gazetteer *Gazetteer) (LocationRecord, error) {
	props := feature.Properties

	if len(feature.Geometry.Coordinates) < 2 {
		return LocationRecord{}, &MalformedFeatureError{
			Index:  index,
			Name:   props.Name,
			Reason: fmt.Sprintf("expected [lng, lat] coordinates, got %v", feature.Geometry.Coordinates),
		}
	}

	distance, _ := gazetteer.Distance(srcZipCode, props.PostalCode)

	return LocationRecord{
		Provider:        props.Name,
		Address:         fmt.Sprintf("%s, %s %s %s", props.Address, props.City, props.State, props.PostalCode),
		ZipCode:         props.PostalCode,
		Distance:        distance,
		HasAppointments: props.AppointmentsAvailable != nil && *props.AppointmentsAvailable,
		Url:             props.Url,
	}, nil
}

// ParseFeatures parses every feature, skipping malformed ones
func ParseFeatures(collection *FeatureCollection, srcZipCode string, gazetteer *Gazetteer) []LocationRecord {
	records := make([]LocationRecord, 0, len(collection.Features))
	skipped := 0

	for idx, raw := range collection.Features {
		feature, err := DecodeFeature(idx, raw)
		if err != nil {
			Log.Warnf("Skipping: %v", err)
			skipped++
			continue
		}

		record, err := ParseFeature(idx, feature, srcZipCode, gazetteer)
		if err != nil {
			Log.Warnf("Skipping: %v", err)
			skipped++
			continue
		}
		records = append(records, record)
	}

	Log.Debugf("Parsed %d locations, skipped %d", len(records), skipped)

	return records
}
