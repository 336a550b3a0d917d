package cwn

import (
	"errors"
	"io/ioutil"
	"path/filepath"
	"reflect"
	"testing"
)

const testZipCodesDelimited = `zip,latitude,longitude
80202,39.75,-104.99
80301,40.02,-105.27
80401,39.73,-105.21
81501,39.07,-108.55
bogus
80999,notanumber,-104.0
,39.0,-104.0
`

const testZipCodesJSON = `[
  {"datasetid": "us-zip-code", "fields": {"zip": "80202", "geopoint": [39.75, -104.99]}},
  {"datasetid": "us-zip-code", "fields": {"zip": "80301", "geopoint": [40.02, -105.27]}},
  {"datasetid": "us-zip-code", "fields": {"zip": "80401"}},
  {"datasetid": "us-zip-code", "fields": {"geopoint": [39.0, -104.0]}},
  {"datasetid": "us-zip-code"},
  {"datasetid": "us-zip-code", "fields": {"zip": 1001, "geopoint": [42.06, -72.61]}}
]`

func writeTestFile(t *testing.T, name string, contents string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := ioutil.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("Unexpected Error: %v", err)
	}
	return path
}

func testGazetteer() *Gazetteer {
	return NewGazetteer(map[string]Coordinate{
		"80202": Coordinate{Lat: 39.75, Lng: -104.99},
		"80301": Coordinate{Lat: 40.02, Lng: -105.27},
	})
}

func TestLoadGazetteerDelimited(t *testing.T) {
	path := writeTestFile(t, "zip_codes.txt", testZipCodesDelimited)

	gazetteer, err := LoadGazetteer(path)
	if err != nil {
		t.Errorf("Unexpected Error: %v", err)
		return
	}

	if gazetteer.Len() != 4 {
		t.Errorf("Expected 4 zip codes, got %d", gazetteer.Len())
		return
	}

	coord, ok := gazetteer.Lookup("80301")
	if !ok || coord.Lat != 40.02 || coord.Lng != -105.27 {
		t.Errorf("Expected 80301 at 40.02,-105.27, got %v (found: %v)", coord, ok)
		return
	}

	if _, ok := gazetteer.Lookup("80999"); ok {
		t.Errorf("Expected entry with invalid latitude to be excluded")
		return
	}
}

func TestLoadGazetteerDelimitedHeaderOrder(t *testing.T) {
	path := writeTestFile(t, "zip_codes.txt", "longitude,zip,latitude\n-104.99,80202,39.75\n")

	gazetteer, err := LoadGazetteer(path)
	if err != nil {
		t.Errorf("Unexpected Error: %v", err)
		return
	}

	coord, ok := gazetteer.Lookup("80202")
	if !ok || coord.Lat != 39.75 || coord.Lng != -104.99 {
		t.Errorf("Expected 80202 at 39.75,-104.99, got %v (found: %v)", coord, ok)
		return
	}
}

func TestLoadGazetteerJSON(t *testing.T) {
	path := writeTestFile(t, "zip_codes.json", testZipCodesJSON)

	gazetteer, err := LoadGazetteer(path)
	if err != nil {
		t.Errorf("Unexpected Error: %v", err)
		return
	}

	if gazetteer.Len() != 3 {
		t.Errorf("Expected 3 zip codes, got %d", gazetteer.Len())
		return
	}

	coord, ok := gazetteer.Lookup("80202")
	if !ok || coord.Lat != 39.75 || coord.Lng != -104.99 {
		t.Errorf("Expected geopoint to be read as [lat, lng], got %v", coord)
		return
	}

	if _, ok := gazetteer.Lookup("01001"); !ok {
		t.Errorf("Expected numeric zip to be zero padded to 01001")
		return
	}

	if _, ok := gazetteer.Lookup("80401"); ok {
		t.Errorf("Expected record without geopoint to be excluded")
		return
	}
}

func TestLoadGazetteerJSONMistypedRecords(t *testing.T) {
	path := writeTestFile(t, "zip_codes.json", `[
  {"fields": {"zip": "80202", "geopoint": [39.75, -104.99]}},
  {"fields": {"zip": "80302", "geopoint": "40.02,-105.27"}},
  {"fields": []},
  "80303",
  {"fields": {"zip": "80301", "geopoint": [40.02, -105.27]}}
]`)

	gazetteer, err := LoadGazetteer(path)
	if err != nil {
		t.Errorf("Unexpected Error: %v", err)
		return
	}

	if gazetteer.Len() != 2 {
		t.Errorf("Expected 2 zip codes, got %d", gazetteer.Len())
		return
	}

	if _, ok := gazetteer.Lookup("80302"); ok {
		t.Errorf("Expected record with string geopoint to be excluded")
		return
	}

	if _, ok := gazetteer.Lookup("80301"); !ok {
		t.Errorf("Expected records after a mistyped one to still load")
		return
	}
}

func TestLoadGazetteerJSONRecordsObjectMistyped(t *testing.T) {
	path := writeTestFile(t, "zip_codes.json", `{"records": [{"fields": {"zip": "80202", "geopoint": [39.75, -104.99]}}, {"fields": {"zip": {}, "geopoint": [1, 2]}}, {"fields": {"zip": "80301", "geopoint": [true, 2]}}]}`)

	gazetteer, err := LoadGazetteer(path)
	if err != nil {
		t.Errorf("Unexpected Error: %v", err)
		return
	}

	if gazetteer.Len() != 1 {
		t.Errorf("Expected 1 zip code, got %d", gazetteer.Len())
		return
	}
}

func TestLoadGazetteerJSONRecordsObject(t *testing.T) {
	path := writeTestFile(t, "zip_codes.json", `{"records": [{"fields": {"zip": "80202", "geopoint": [39.75, -104.99]}}]}`)

	gazetteer, err := LoadGazetteer(path)
	if err != nil {
		t.Errorf("Unexpected Error: %v", err)
		return
	}

	if gazetteer.Len() != 1 {
		t.Errorf("Expected 1 zip code, got %d", gazetteer.Len())
		return
	}
}

func TestLoadGazetteerErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.txt")
	empty := writeTestFile(t, "empty.txt", "  \n")
	corrupt := writeTestFile(t, "corrupt.json", `[{"fields": `)

	for _, path := range []string{missing, empty, corrupt} {
		_, err := LoadGazetteer(path)
		if err == nil {
			t.Errorf("Expected error for %s, got nil", path)
			return
		}

		var dataLoadErr *DataLoadError
		if !errors.As(err, &dataLoadErr) {
			t.Errorf("Expected DataLoadError for %s, got %T", path, err)
			return
		}
	}
}

func TestGazetteerDistance(t *testing.T) {
	gazetteer := testGazetteer()

	miles, ok := gazetteer.Distance("80202", "80301")
	if !ok {
		t.Errorf("Expected distance to be known")
		return
	}

	if miles < 15 || miles > 30 {
		t.Errorf("Expected roughly 20 miles between 80202 and 80301, got %d", miles)
		return
	}

	miles, ok = gazetteer.Distance("80202", "80202")
	if !ok || miles != 0 {
		t.Errorf("Expected 0 miles to self, got %d", miles)
		return
	}

	miles, ok = gazetteer.Distance("80202", "99999")
	if ok || miles != UnknownDistance {
		t.Errorf("Expected unknown distance for missing zip, got %d (ok: %v)", miles, ok)
		return
	}

	if _, ok = gazetteer.Distance("99999", "80202"); ok {
		t.Errorf("Expected unknown distance for missing source zip")
		return
	}
}

func TestGazetteerDistanceSymmetric(t *testing.T) {
	path := writeTestFile(t, "zip_codes.txt", testZipCodesDelimited)
	gazetteer, err := LoadGazetteer(path)
	if err != nil {
		t.Errorf("Unexpected Error: %v", err)
		return
	}

	zips := []string{"80202", "80301", "80401", "81501"}
	for _, a := range zips {
		for _, b := range zips {
			ab, _ := gazetteer.Distance(a, b)
			ba, _ := gazetteer.Distance(b, a)
			if ab != ba {
				t.Errorf("Expected distance(%s, %s) == distance(%s, %s), got %d != %d", a, b, b, a, ab, ba)
				return
			}
		}
	}
}

func TestGazetteerWithin(t *testing.T) {
	path := writeTestFile(t, "zip_codes.txt", testZipCodesDelimited)
	gazetteer, err := LoadGazetteer(path)
	if err != nil {
		t.Errorf("Unexpected Error: %v", err)
		return
	}

	nearby := gazetteer.Within("80202", 30)
	expected := []string{"80202", "80301", "80401"}
	if !reflect.DeepEqual(nearby, expected) {
		t.Errorf("Expected %v, got %v", expected, nearby)
		return
	}

	nearby = gazetteer.Within("80202", 0)
	if !reflect.DeepEqual(nearby, []string{"80202"}) {
		t.Errorf("Expected only the source zip at 0 miles, got %v", nearby)
		return
	}

	if nearby = gazetteer.Within("99999", 100); nearby != nil {
		t.Errorf("Expected nil for unknown zip, got %v", nearby)
		return
	}
}
