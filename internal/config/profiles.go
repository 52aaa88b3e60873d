package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

var (
	ErrNoProfilesDefined = errors.New("no profiles defined")
	ErrUnknownFormat     = errors.New("unable to detect profiles format")
)

type profilesFile struct {
	Profiles []model.ConverterProfile `json:"profiles" yaml:"profiles" toml:"profiles"`
}

// LoadProfiles reads an ordered list of converter profiles from a YAML, JSON or TOML file.
// The format follows the extension, or the content when the extension is unknown.
func LoadProfiles(path string) ([]model.ConverterProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read profiles")
	}

	profiles, err := ParseProfiles(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return nil, errors.Wrapf(err, "profiles %s", path)
	}

	return profiles, nil
}

// ParseProfiles decodes data in the given format: yaml, yml, json or toml. Any other format
// triggers detection.
func ParseProfiles(data []byte, format string) ([]model.ConverterProfile, error) {
	var (
		f   profilesFile
		err error
	)

	switch format {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &f)
	case "json":
		err = json.Unmarshal(data, &f)
	case "toml":
		err = toml.Unmarshal(data, &f)
	default:
		f, err = detect(data)
	}
	if err != nil {
		return nil, errors.Wrap(err, "decode profiles")
	}

	if err := validateProfiles(f.Profiles); err != nil {
		return nil, err
	}

	return f.Profiles, nil
}

func detect(data []byte) (profilesFile, error) {
	var f profilesFile

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return f, json.Unmarshal(trimmed, &f)
	}
	if toml.Unmarshal(data, &f) == nil && len(f.Profiles) > 0 {
		return f, nil
	}
	f = profilesFile{}
	if yaml.Unmarshal(data, &f) == nil && len(f.Profiles) > 0 {
		return f, nil
	}

	return f, ErrUnknownFormat
}

func validateProfiles(profiles []model.ConverterProfile) error {
	if len(profiles) == 0 {
		return ErrNoProfilesDefined
	}

	seen := make(map[string]struct{}, len(profiles))
	for i, p := range profiles {
		if p.Name == "" {
			return errors.Errorf("profile %d: name is required", i)
		}
		if _, ok := seen[p.Name]; ok {
			return errors.Errorf("profile %s: duplicated name", p.Name)
		}
		seen[p.Name] = struct{}{}

		switch p.Mode {
		case model.ModePixel, model.ModePolygon, model.ModeSpline:
		default:
			return errors.Errorf("profile %s: unknown mode %q", p.Name, p.Mode)
		}
		if p.CornerThreshold < 0 || p.LengthThreshold < 0 || p.MaxIterations < 0 ||
			p.SpliceThreshold < 0 || p.FilterSpeckle < 0 || p.PathPrecision < 0 {
			return errors.Errorf("profile %s: thresholds must not be negative", p.Name)
		}
	}

	return nil
}
