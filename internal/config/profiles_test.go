package config_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-vectorize/internal/config"
	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

var wantProfiles = []model.ConverterProfile{
	{Name: "coarse", Mode: model.ModePolygon, CornerThreshold: 60, LengthThreshold: 10, FilterSpeckle: 8, PathPrecision: 1},
	{Name: "fine", Mode: model.ModeSpline, LengthThreshold: 3.5, MaxIterations: 15, PathPrecision: 3},
}

func TestLoadProfiles(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		file    string
		content string
	}{
		"yaml": {
			file: "profiles.yaml",
			content: `profiles:
  - name: coarse
    mode: polygon
    corner_threshold: 60
    length_threshold: 10
    filter_speckle: 8
    path_precision: 1
  - name: fine
    mode: spline
    length_threshold: 3.5
    max_iterations: 15
    path_precision: 3
`,
		},
		"json": {
			file: "profiles.json",
			content: `{"profiles": [
  {"name": "coarse", "mode": "polygon", "corner_threshold": 60, "length_threshold": 10, "filter_speckle": 8, "path_precision": 1},
  {"name": "fine", "mode": "spline", "length_threshold": 3.5, "max_iterations": 15, "path_precision": 3}
]}`,
		},
		"toml": {
			file: "profiles.toml",
			content: `[[profiles]]
name = "coarse"
mode = "polygon"
corner_threshold = 60
length_threshold = 10.0
filter_speckle = 8
path_precision = 1

[[profiles]]
name = "fine"
mode = "spline"
length_threshold = 3.5
max_iterations = 15
path_precision = 3
`,
		},
		"detected yaml": {
			file: "profiles",
			content: `profiles:
  - {name: coarse, mode: polygon, corner_threshold: 60, length_threshold: 10, filter_speckle: 8, path_precision: 1}
  - {name: fine, mode: spline, length_threshold: 3.5, max_iterations: 15, path_precision: 3}
`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			got, err := config.LoadProfiles(path)
			require.NoError(t, err)

			if diff := cmp.Diff(wantProfiles, got); diff != "" {
				t.Errorf("profiles mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseProfilesErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content string
		format  string
		wantErr error
		msg     string
	}{
		"empty": {
			content: "profiles: []\n",
			format:  "yaml",
			wantErr: config.ErrNoProfilesDefined,
		},
		"missing name": {
			content: "profiles:\n  - mode: spline\n",
			format:  "yaml",
			msg:     "profile 0: name is required",
		},
		"duplicated": {
			content: "profiles:\n  - {name: a, mode: spline}\n  - {name: a, mode: pixel}\n",
			format:  "yaml",
			msg:     "profile a: duplicated name",
		},
		"unknown mode": {
			content: `{"profiles": [{"name": "a", "mode": "bezier"}]}`,
			format:  "json",
			msg:     `profile a: unknown mode "bezier"`,
		},
		"negative": {
			content: "profiles:\n  - {name: a, mode: spline, filter_speckle: -1}\n",
			format:  "yml",
			msg:     "profile a: thresholds must not be negative",
		},
		"undetectable": {
			content: "just some text",
			format:  "",
			wantErr: config.ErrUnknownFormat,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := config.ParseProfiles([]byte(tt.content), tt.format)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.msg != "" {
				assert.ErrorContains(t, err, tt.msg)
			}
		})
	}
}
