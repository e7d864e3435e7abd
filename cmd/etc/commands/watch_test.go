package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/etc/internal/model"
	"github.com/slok/etc/internal/profile"
)

func float64Ptr(v float64) *float64 { return &v }

func TestResolveWatchSettings(t *testing.T) {
	tests := map[string]struct {
		flags       watchFlags
		profile     *profile.Profile
		expSettings watchSettings
		expErr      error
	}{
		"Explicit goal without profile": {
			flags:       watchFlags{goalRaw: "100", output: "line"},
			expSettings: watchSettings{goal: 100, output: "line"},
		},

		"Profile supplies the goal when the arg is absent": {
			flags:       watchFlags{output: "line"},
			profile:     &profile.Profile{Goal: float64Ptr(1000)},
			expSettings: watchSettings{goal: 1000, output: "line"},
		},

		"Explicit goal beats the profile goal": {
			flags:       watchFlags{goalRaw: "50", output: "line"},
			profile:     &profile.Profile{Goal: float64Ptr(1000)},
			expSettings: watchSettings{goal: 50, output: "line"},
		},

		"Unset flags take the profile values": {
			flags: watchFlags{goalRaw: "100", output: "line"},
			profile: &profile.Profile{
				Field:     3,
				Delimiter: ",",
				Label:     "blocks free",
				Output:    "screen",
			},
			expSettings: watchSettings{
				goal:      100,
				field:     3,
				delimiter: ",",
				label:     "blocks free",
				output:    "screen",
			},
		},

		"Explicit flags beat profile values": {
			flags: watchFlags{
				goalRaw:      "100",
				field:        1,
				fieldSet:     true,
				delimiter:    ";",
				delimiterSet: true,
				label:        "mine",
				labelSet:     true,
				output:       "plain",
				outputSet:    true,
			},
			profile: &profile.Profile{
				Field:     3,
				Delimiter: ",",
				Label:     "blocks free",
				Output:    "screen",
			},
			expSettings: watchSettings{
				goal:      100,
				field:     1,
				delimiter: ";",
				label:     "mine",
				output:    "plain",
			},
		},

		"Explicit zero field keeps the whole line over a profile field": {
			flags:       watchFlags{goalRaw: "100", field: 0, fieldSet: true, output: "line"},
			profile:     &profile.Profile{Field: 3},
			expSettings: watchSettings{goal: 100, field: 0, output: "line"},
		},

		"Explicit default output is not overridden by the profile": {
			flags:       watchFlags{goalRaw: "100", output: "line", outputSet: true},
			profile:     &profile.Profile{Output: "screen"},
			expSettings: watchSettings{goal: 100, output: "line"},
		},

		"Missing goal everywhere fails": {
			flags:  watchFlags{output: "line"},
			expErr: model.ErrNotValid,
		},

		"Profile without a goal doesn't satisfy the goal requirement": {
			flags:  watchFlags{output: "line"},
			profile: &profile.Profile{
				Label: "blocks free",
			},
			expErr: model.ErrNotValid,
		},

		"Non numeric goal fails": {
			flags:  watchFlags{goalRaw: "lots", output: "line"},
			expErr: model.ErrNotValid,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			settings, err := resolveWatchSettings(tc.flags, tc.profile)

			if tc.expErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expSettings, settings)
		})
	}
}
