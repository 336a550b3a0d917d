package cwn

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"github.com/dhconnelly/rtreego"
	"github.com/umahmood/haversine"
	"io"
	"io/ioutil"
	"math"
	"sort"
	"strconv"
	"strings"
)

const GazetteerColumnZip = "zip"
const GazetteerColumnLat = "latitude"
const GazetteerColumnLng = "longitude"

// miles per degree of latitude, used to size the r-tree search box
const milesPerDegree = 69.0

// side of the box each zip point occupies in the r-tree
const pointExtent = 0.0001

type Coordinate struct {
	Lat float64
	Lng float64
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%f,%f", c.Lat, c.Lng)
}

type Gazetteer struct {
	points map[string]Coordinate
	tree   *rtreego.Rtree
}

type zipPoint struct {
	rect    rtreego.Rect
	zipCode string
}

func (p *zipPoint) Bounds() rtreego.Rect {
	return p.rect
}

func NewGazetteer(points map[string]Coordinate) *Gazetteer {
	g := &Gazetteer{
		points: make(map[string]Coordinate, len(points)),
		tree:   rtreego.NewTree(2, 25, 50),
	}

	for zipCode, coord := range points {
		g.points[zipCode] = coord

		rect, err := rtreego.NewRect(rtreego.Point{coord.Lng, coord.Lat}, []float64{pointExtent, pointExtent})
		if err != nil {
			Log.Warnf("Could not index zip code %s: %v", zipCode, err)
			continue
		}
		g.tree.Insert(&zipPoint{rect: rect, zipCode: zipCode})
	}

	return g
}

func (g *Gazetteer) Len() int {
	return len(g.points)
}

func (g *Gazetteer) Lookup(zipCode string) (Coordinate, bool) {
	coord, ok := g.points[zipCode]
	return coord, ok
}

// Distance returns the great-circle distance between two zip codes truncated
// to whole miles. ok is false when either zip code is unknown.
func (g *Gazetteer) Distance(srcZipCode string, dstZipCode string) (miles int, ok bool) {
	src, srcOk := g.points[srcZipCode]
	dst, dstOk := g.points[dstZipCode]
	if !srcOk || !dstOk {
		return UnknownDistance, false
	}

	return int(greatCircleMiles(src, dst)), true
}

func greatCircleMiles(a Coordinate, b Coordinate) float64 {
	mi, _ := haversine.Distance(
		haversine.Coord{Lat: a.Lat, Lon: a.Lng},
		haversine.Coord{Lat: b.Lat, Lon: b.Lng})
	return mi
}

// Within returns the zip codes within the given number of miles of zipCode,
// sorted, including zipCode itself. Unknown zip codes yield nil.
func (g *Gazetteer) Within(zipCode string, miles int) []string {
	center, ok := g.points[zipCode]
	if !ok || miles < 0 {
		return nil
	}

	latDelta := float64(miles)/milesPerDegree + pointExtent
	lngDelta := latDelta
	if cosLat := math.Cos(center.Lat * math.Pi / 180); cosLat > 0.01 {
		lngDelta = float64(miles)/(milesPerDegree*cosLat) + pointExtent
	}

	corner := rtreego.Point{center.Lng - lngDelta, center.Lat - latDelta}
	searchRect, err := rtreego.NewRect(corner, []float64{2 * lngDelta, 2 * latDelta})
	if err != nil {
		Log.Warnf("Could not build search box around %s: %v", zipCode, err)
		return nil
	}

	nearby := make([]string, 0)
	for _, item := range g.tree.SearchIntersect(searchRect) {
		candidate := item.(*zipPoint)
		if candidate.zipCode == zipCode {
			nearby = append(nearby, candidate.zipCode)
			continue
		}

		// exact distance so the result is a radius and not a box
		if distance, _ := g.Distance(zipCode, candidate.zipCode); distance <= miles {
			nearby = append(nearby, candidate.zipCode)
		}
	}

	sort.Strings(nearby)
	return nearby
}

// LoadGazetteer loads zip code coordinates from either a delimited text file
// (header row, zip,latitude,longitude) or a JSON document of records carrying
// fields.zip and fields.geopoint. Bad entries are skipped.
func LoadGazetteer(path string) (*Gazetteer, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &DataLoadError{Path: path, Err: fmt.Errorf("file is empty")}
	}

	var points map[string]Coordinate
	if trimmed[0] == '[' || trimmed[0] == '{' {
		points, err = parseGazetteerJSON(trimmed)
	} else {
		points, err = parseGazetteerDelimited(bytes.NewReader(trimmed))
	}
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}

	Log.Debugf("Loaded %d zip codes from %s", len(points), path)

	return NewGazetteer(points), nil
}

func parseGazetteerDelimited(reader io.Reader) (map[string]Coordinate, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("could not read header row: %v", err)
	}

	zipIdx, latIdx, lngIdx := 0, 1, 2
	columns := make(map[string]int)
	for idx, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = idx
	}
	if idx, exists := columns[GazetteerColumnZip]; exists {
		zipIdx = idx
	}
	if idx, exists := columns[GazetteerColumnLat]; exists {
		latIdx = idx
	}
	if idx, exists := columns[GazetteerColumnLng]; exists {
		lngIdx = idx
	}

	maxIdx := zipIdx
	if latIdx > maxIdx {
		maxIdx = latIdx
	}
	if lngIdx > maxIdx {
		maxIdx = lngIdx
	}

	points := make(map[string]Coordinate)
	for line := 2; ; line++ {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			Log.Warnf("Skipping zip code line %d: %v", line, err)
			continue
		}

		if len(record) <= maxIdx {
			Log.Warnf("Skipping zip code line %d: expected at least %d fields, got %d", line, maxIdx+1, len(record))
			continue
		}

		zipCode := strings.TrimSpace(record[zipIdx])
		if len(zipCode) == 0 {
			Log.Warnf("Skipping zip code line %d: empty zip code", line)
			continue
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(record[latIdx]), 64)
		if err != nil {
			Log.Warnf("Skipping zip code %s: invalid latitude: %v", zipCode, err)
			continue
		}

		lng, err := strconv.ParseFloat(strings.TrimSpace(record[lngIdx]), 64)
		if err != nil {
			Log.Warnf("Skipping zip code %s: invalid longitude: %v", zipCode, err)
			continue
		}

		points[zipCode] = Coordinate{Lat: lat, Lng: lng}
	}

	return points, nil
}

type gazetteerRecord struct {
	Fields *gazetteerFields `json:"fields"`
}

type gazetteerFields struct {
	Zip      json.RawMessage `json:"zip"`
	Geopoint []float64       `json:"geopoint"`
}

type gazetteerDocument struct {
	Records []json.RawMessage `json:"records"`
}

func parseGazetteerJSON(data []byte) (map[string]Coordinate, error) {
	var records []json.RawMessage

	if data[0] == '[' {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
	} else {
		doc := gazetteerDocument{}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		records = doc.Records
	}

	points := make(map[string]Coordinate)
	for idx, raw := range records {
		record := gazetteerRecord{}
		if err := json.Unmarshal(raw, &record); err != nil {
			Log.Warnf("Skipping zip code record %d: %v", idx, err)
			continue
		}

		if record.Fields == nil {
			Log.Warnf("Skipping zip code record %d: no fields", idx)
			continue
		}

		zipCode := parseZipValue(record.Fields.Zip)
		if len(zipCode) == 0 {
			Log.Warnf("Skipping zip code record %d: missing zip", idx)
			continue
		}

		if len(record.Fields.Geopoint) < 2 {
			Log.Warnf("Skipping zip code %s: missing geopoint", zipCode)
			continue
		}

		// geopoint is [lat, lng]
		points[zipCode] = Coordinate{Lat: record.Fields.Geopoint[0], Lng: record.Fields.Geopoint[1]}
	}

	return points, nil
}

// zip may be published as a string or a bare number
func parseZipValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strings.TrimSpace(str)
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		if n, err := num.Int64(); err == nil && n >= 0 {
			return fmt.Sprintf("%05d", n)
		}
	}

	return ""
}
