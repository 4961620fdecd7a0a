package importer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/latitude-explorer/latitude-explorer/internal/pkg/application/cities"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/logging"
	"github.com/latitude-explorer/latitude-explorer/pkg/types"
	"github.com/samber/lo"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var (
	ErrUnknownFormat  = errors.New("unknown import format")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoCities       = errors.New("no valid cities found")
)

// Report summarizes an import. Rows counts every record read from the file.
type Report struct {
	Rows     int
	Skipped  int
	Imported int
}

// ResolveFormat returns the explicit format when given, otherwise the one
// implied by the file extension.
func ResolveFormat(path, explicit string) (Format, error) {
	f := strings.ToLower(strings.TrimSpace(explicit))
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	switch Format(f) {
	case FormatCSV, FormatJSON:
		return Format(f), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Import parses the source and replaces every stored city with the accepted
// rows. A source without a single valid row leaves the store untouched.
func Import(ctx context.Context, store cities.CityStore, source io.Reader, format Format) (Report, error) {
	log := logging.GetLoggerFromContext(ctx)

	parsed, report, err := Parse(ctx, source, format)
	if err != nil {
		return report, err
	}

	if len(parsed) == 0 {
		return report, ErrNoCities
	}

	n, err := store.ReplaceAll(ctx, parsed)
	if err != nil {
		return report, err
	}

	report.Imported = n

	log.Info().Int("rows", report.Rows).Int("skipped", report.Skipped).Int("imported", report.Imported).Msg("import done")

	return report, nil
}

func Parse(ctx context.Context, source io.Reader, format Format) ([]types.City, Report, error) {
	switch format {
	case FormatCSV:
		return parseCSV(ctx, source)
	case FormatJSON:
		return parseJSON(ctx, source)
	default:
		return nil, Report{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

type record struct {
	line       int
	name       string
	asciiName  string
	country    string
	lat        string
	lng        string
	population string
	timezone   string
}

func (r record) toCity(ctx context.Context) (types.City, error) {
	log := logging.GetLoggerFromContext(ctx)

	name, _ := lo.Coalesce(strings.TrimSpace(r.asciiName), strings.TrimSpace(r.name))
	country := strings.TrimSpace(r.country)

	if name == "" || country == "" {
		return types.City{}, errors.New("missing name or country")
	}

	lat, err := parseCoordinate(r.lat, 90)
	if err != nil {
		return types.City{}, fmt.Errorf("latitude: %w", err)
	}

	lng, err := parseCoordinate(r.lng, 180)
	if err != nil {
		return types.City{}, fmt.Errorf("longitude: %w", err)
	}

	city := types.City{
		Name:      name,
		Country:   country,
		Latitude:  lat,
		Longitude: lng,
	}

	if p := strings.TrimSpace(r.population); p != "" {
		population, ok := parsePopulation(p)
		if !ok {
			log.Warn().Int("line", r.line).Str("population", p).Msg("ignoring invalid population")
		} else {
			city.Population = &population
		}
	}

	if tz := strings.TrimSpace(r.timezone); tz != "" {
		city.Timezone = &tz
	}

	return city, nil
}

func parseCoordinate(value string, limit float64) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", value)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < -limit || f > limit {
		return 0, fmt.Errorf("out of range: %v", f)
	}

	return f, nil
}

func parsePopulation(value string) (int64, bool) {
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, n >= 0
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt64 {
		return 0, false
	}

	return int64(f), true
}

func collect(ctx context.Context, records []record) ([]types.City, Report) {
	log := logging.GetLoggerFromContext(ctx)

	report := Report{Rows: len(records)}
	result := make([]types.City, 0, len(records))

	for _, r := range records {
		city, err := r.toCity(ctx)
		if err != nil {
			log.Warn().Int("line", r.line).Err(err).Msg("skipping invalid row")
			report.Skipped++
			continue
		}
		result = append(result, city)
	}

	return result, report
}

func parseCSV(ctx context.Context, source io.Reader) ([]types.City, Report, error) {
	r := csv.NewReader(source)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, Report{}, err
	}

	if len(rows) == 0 {
		return nil, Report{}, fmt.Errorf("%w: empty file", ErrMissingColumns)
	}

	columns := map[string]int{}
	for i, h := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	_, hasCity := columns["city"]
	_, hasASCII := columns["city_ascii"]
	missing := lo.Filter([]string{"country", "lat", "lng"}, func(c string, _ int) bool {
		_, ok := columns[c]
		return !ok
	})
	if !hasCity && !hasASCII {
		missing = append(missing, "city")
	}
	if len(missing) > 0 {
		return nil, Report{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		records = append(records, record{
			line:       i + 2,
			name:       field(row, "city"),
			asciiName:  field(row, "city_ascii"),
			country:    field(row, "country"),
			lat:        field(row, "lat"),
			lng:        field(row, "lng"),
			population: field(row, "population"),
			timezone:   field(row, "timezone"),
		})
	}

	result, report := collect(ctx, records)
	return result, report, nil
}

type jsonRecord struct {
	Name       string          `json:"name"`
	Country    string          `json:"country"`
	Lat        json.RawMessage `json:"lat"`
	Lng        json.RawMessage `json:"lng"`
	Population json.RawMessage `json:"population"`
	Timezone   string          `json:"timezone"`
}

func parseJSON(ctx context.Context, source io.Reader) ([]types.City, Report, error) {
	log := logging.GetLoggerFromContext(ctx)

	dec := json.NewDecoder(source)

	tok, err := dec.Token()
	if err != nil {
		return nil, Report{}, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, Report{}, errors.New("expected a json array of cities")
	}

	var records []record
	skipped := 0

	for i := 1; dec.More(); i++ {
		var jr jsonRecord
		if err := dec.Decode(&jr); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				log.Warn().Int("line", i).Err(err).Msg("skipping invalid row")
				skipped++
				continue
			}
			return nil, Report{}, err
		}

		records = append(records, record{
			line:       i,
			name:       jr.Name,
			country:    jr.Country,
			lat:        rawString(jr.Lat),
			lng:        rawString(jr.Lng),
			population: rawString(jr.Population),
			timezone:   jr.Timezone,
		})
	}

	result, report := collect(ctx, records)
	report.Rows += skipped
	report.Skipped += skipped

	return result, report, nil
}

// rawString returns a json string or number as text. Null and missing
// values become the empty string.
func rawString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}

	return s
}
