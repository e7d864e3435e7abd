package render_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/etc/internal/model"
	"github.com/slok/etc/internal/render"
)

func snapshotFixture() model.Snapshot {
	return model.Snapshot{
		Goal:             100,
		Baseline:         10,
		CurrentValue:     30,
		ElapsedSeconds:   2,
		PercentComplete:  22.2222,
		AverageRate:      10,
		SecondsRemaining: 7,
		ETA:              time.Date(2026, 2, 15, 10, 0, 7, 0, time.UTC),
	}
}

func TestStatusLineRender(t *testing.T) {
	tests := map[string]struct {
		config  render.StatusLineConfig
		snap    model.Snapshot
		expText string
	}{
		"Plain mode writes one full line per snapshot": {
			config:  render.StatusLineConfig{Mode: render.ModePlain},
			snap:    snapshotFixture(),
			expText: "22.2% | 30 / 100 | rate: 10.0000/s | remaining: 00:00:07 | eta: 2026-02-15 10:00:07\n",
		},

		"Line mode rewrites in place": {
			config:  render.StatusLineConfig{Mode: render.ModeLine},
			snap:    snapshotFixture(),
			expText: "\r22.2% | 30 / 100 | rate: 10.0000/s | remaining: 00:00:07 | eta: 2026-02-15 10:00:07",
		},

		"Label prefixes the status": {
			config:  render.StatusLineConfig{Mode: render.ModePlain, Label: "bytes copied"},
			snap:    snapshotFixture(),
			expText: "bytes copied: 22.2% | 30 / 100 | rate: 10.0000/s | remaining: 00:00:07 | eta: 2026-02-15 10:00:07\n",
		},

		"Undefined completion renders the sentinels": {
			config: render.StatusLineConfig{Mode: render.ModePlain},
			snap: model.Snapshot{
				Goal:           0,
				Baseline:       40,
				CurrentValue:   40,
				ElapsedSeconds: 2,
				Infinite:       true,
			},
			expText: "0.0% | 40 / 0 | rate: 0.0000/s | remaining: --:--:-- | eta: never\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			test.config.Output = &buf
			sink, err := render.NewStatusLine(test.config)
			require.NoError(t, err)

			require.NoError(t, sink.Render(test.snap))

			assert.Equal(t, test.expText, buf.String())
		})
	}
}

func TestStatusLineRenderScreenMode(t *testing.T) {
	var buf bytes.Buffer
	sink, err := render.NewStatusLine(render.StatusLineConfig{Output: &buf, Mode: render.ModeScreen, Label: "queue"})
	require.NoError(t, err)

	require.NoError(t, sink.Render(snapshotFixture()))

	got := buf.String()
	assert.True(t, strings.HasPrefix(got, "\033[H\033[J"))
	assert.Contains(t, got, "queue\n")
	assert.Contains(t, got, "Complete:   22.2%\n")
	assert.Contains(t, got, "Remaining:  00:00:07\n")
	assert.Contains(t, got, "ETA:        2026-02-15 10:00:07")
}

func TestStatusLineRenderLinePadding(t *testing.T) {
	var buf bytes.Buffer
	sink, err := render.NewStatusLine(render.StatusLineConfig{Output: &buf, Mode: render.ModeLine})
	require.NoError(t, err)

	long := snapshotFixture()
	long.CurrentValue = 12345.678
	require.NoError(t, sink.Render(long))

	buf.Reset()
	short := snapshotFixture()
	require.NoError(t, sink.Render(short))

	// The shorter rewrite pads over the previous, longer line.
	assert.True(t, strings.HasSuffix(buf.String(), " "))
}

func TestStatusLineInvalidConfig(t *testing.T) {
	tests := map[string]struct {
		config render.StatusLineConfig
	}{
		"Missing output should fail": {
			config: render.StatusLineConfig{Mode: render.ModePlain},
		},
		"Unknown mode should fail": {
			config: render.StatusLineConfig{Output: &bytes.Buffer{}, Mode: "fancy"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := render.NewStatusLine(test.config)
			require.Error(t, err)
		})
	}
}

func TestHMS(t *testing.T) {
	tests := map[string]struct {
		seconds int64
		exp     string
	}{
		"Zero":                {seconds: 0, exp: "00:00:00"},
		"Seconds only":        {seconds: 59, exp: "00:00:59"},
		"Minutes and seconds": {seconds: 61, exp: "00:01:01"},
		"Hours":               {seconds: 3723, exp: "01:02:03"},
		"Over a day":          {seconds: 90000, exp: "25:00:00"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, render.HMS(test.seconds))
		})
	}
}

func TestJSONLinesRender(t *testing.T) {
	t.Run("Defined completion carries remaining and eta", func(t *testing.T) {
		var buf bytes.Buffer
		sink := render.NewJSONLines(&buf)

		require.NoError(t, sink.Render(snapshotFixture()))

		got := buf.String()
		assert.Contains(t, got, `"percent_complete":22.2222`)
		assert.Contains(t, got, `"seconds_remaining":7`)
		assert.Contains(t, got, `"eta":"2026-02-15T10:00:07Z"`)
		assert.True(t, strings.HasSuffix(got, "\n"))
	})

	t.Run("Undefined completion is null", func(t *testing.T) {
		var buf bytes.Buffer
		sink := render.NewJSONLines(&buf)

		require.NoError(t, sink.Render(model.Snapshot{Infinite: true}))

		got := buf.String()
		assert.Contains(t, got, `"seconds_remaining":null`)
		assert.Contains(t, got, `"eta":null`)
	})
}
