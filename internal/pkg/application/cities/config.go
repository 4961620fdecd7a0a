package cities

import (
	"fmt"
	"io"

	yaml "gopkg.in/yaml.v2"
)

// Settings holds every filter constant used by the query engine. Storage
// adapters only see the values the engine copies into a BandQuery.
type Settings struct {
	DefaultTolerance   float64 `yaml:"defaultTolerance"`
	MaxTolerance       float64 `yaml:"maxTolerance"`
	DefaultLimit       int     `yaml:"defaultLimit"`
	CandidateLimit     int     `yaml:"candidateLimit"`
	MinPopulation      int64   `yaml:"minPopulation"`
	LongitudeExclusion float64 `yaml:"longitudeExclusion"`
	SearchLimit        int     `yaml:"searchLimit"`
	MinSearchLength    int     `yaml:"minSearchLength"`
}

func DefaultSettings() Settings {
	return Settings{
		DefaultTolerance:   1.0,
		MaxTolerance:       10.0,
		DefaultLimit:       50,
		CandidateLimit:     500,
		MinPopulation:      100_000,
		LongitudeExclusion: 3.0,
		SearchLimit:        20,
		MinSearchLength:    2,
	}
}

// LoadSettings reads yaml settings on top of the defaults. Keys that are
// missing from the document keep their default value.
func LoadSettings(data io.Reader) (Settings, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return Settings{}, err
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(buf, &s); err != nil {
		return Settings{}, fmt.Errorf("%w: unable to parse query settings: %w", ErrConfiguration, err)
	}

	return s, s.Validate()
}

func (s Settings) Validate() error {
	if !isFinite(s.MaxTolerance) || s.MaxTolerance < 0 || s.MaxTolerance > 10 {
		return fmt.Errorf("%w: maxTolerance must be within [0, 10], got %v", ErrConfiguration, s.MaxTolerance)
	}
	if !isFinite(s.DefaultTolerance) || s.DefaultTolerance < 0 || s.DefaultTolerance > s.MaxTolerance {
		return fmt.Errorf("%w: defaultTolerance must be within [0, %v], got %v", ErrConfiguration, s.MaxTolerance, s.DefaultTolerance)
	}
	if s.CandidateLimit <= 0 {
		return fmt.Errorf("%w: candidateLimit must be positive, got %d", ErrConfiguration, s.CandidateLimit)
	}
	if s.DefaultLimit <= 0 || s.DefaultLimit > s.CandidateLimit {
		return fmt.Errorf("%w: defaultLimit must be within [1, %d], got %d", ErrConfiguration, s.CandidateLimit, s.DefaultLimit)
	}
	if s.MinPopulation < 0 {
		return fmt.Errorf("%w: minPopulation must not be negative, got %d", ErrConfiguration, s.MinPopulation)
	}
	if !isFinite(s.LongitudeExclusion) || s.LongitudeExclusion < 0 || s.LongitudeExclusion > 360 {
		return fmt.Errorf("%w: longitudeExclusion must be within [0, 360], got %v", ErrConfiguration, s.LongitudeExclusion)
	}
	if s.SearchLimit <= 0 || s.SearchLimit > s.CandidateLimit {
		return fmt.Errorf("%w: searchLimit must be within [1, %d], got %d", ErrConfiguration, s.CandidateLimit, s.SearchLimit)
	}
	if s.MinSearchLength < 1 {
		return fmt.Errorf("%w: minSearchLength must be at least 1, got %d", ErrConfiguration, s.MinSearchLength)
	}

	return nil
}
