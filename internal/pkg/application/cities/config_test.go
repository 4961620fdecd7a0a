package cities

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestLoadSettingsKeepsDefaultsForMissingKeys(t *testing.T) {
	is := is.New(t)

	s, err := LoadSettings(strings.NewReader("minPopulation: 50000\nlongitudeExclusion: 5\n"))
	is.NoErr(err)

	is.Equal(s.MinPopulation, int64(50000))
	is.Equal(s.LongitudeExclusion, 5.0)
	is.Equal(s.DefaultTolerance, 1.0)
	is.Equal(s.CandidateLimit, 500)
	is.Equal(s.DefaultLimit, 50)
}

func TestLoadSettingsFromEmptyDocument(t *testing.T) {
	is := is.New(t)

	s, err := LoadSettings(strings.NewReader(""))
	is.NoErr(err)
	is.Equal(s, DefaultSettings())
}

func TestLoadSettingsRejectsMalformedYaml(t *testing.T) {
	is := is.New(t)

	_, err := LoadSettings(strings.NewReader("minPopulation: [1, 2"))
	is.True(errors.Is(err, ErrConfiguration))
}

func TestValidateRejectsBadSettings(t *testing.T) {
	testCases := map[string]func(*Settings){
		"tolerance above ten":         func(s *Settings) { s.MaxTolerance = 11 },
		"default above max tolerance": func(s *Settings) { s.MaxTolerance = 2; s.DefaultTolerance = 3 },
		"no candidates":               func(s *Settings) { s.CandidateLimit = 0 },
		"default limit above cap":     func(s *Settings) { s.DefaultLimit = 501 },
		"negative population floor":   func(s *Settings) { s.MinPopulation = -1 },
		"negative exclusion":          func(s *Settings) { s.LongitudeExclusion = -1 },
		"zero search limit":           func(s *Settings) { s.SearchLimit = 0 },
		"empty search term allowed":   func(s *Settings) { s.MinSearchLength = 0 },
	}

	for name, mutate := range testCases {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)

			s := DefaultSettings()
			mutate(&s)

			is.True(errors.Is(s.Validate(), ErrConfiguration))
		})
	}
}

func TestDefaultSettingsAreValid(t *testing.T) {
	is := is.New(t)
	is.NoErr(DefaultSettings().Validate())
}
