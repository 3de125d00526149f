package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/guineaday/internal/completion"
	"github.com/ayusman/guineaday/internal/input"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.9, cfg.Physics.Restitution)
	assert.Equal(t, 4.0, cfg.Physics.MaxSpeed)
	assert.Equal(t, 0.2, cfg.Physics.Jitter)
	assert.Equal(t, 60.0, cfg.Completion.ZoneThreshold)
	assert.Equal(t, 80.0, cfg.Completion.ProgressThreshold)
	assert.Equal(t, 0.05, cfg.Gesture.CurlSlack)
	assert.Equal(t, 2, cfg.Gesture.CurlRequired)
	assert.Len(t, cfg.Bodies.Labels, 6)
	assert.Len(t, cfg.Zones, 6)
	assert.True(t, cfg.Gesture.FallbackToPointer)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		createFile bool
		content    string
		wantErr    error
		validate   func(t *testing.T, cfg *Config)
	}{
		{
			name:       "overlay on defaults",
			createFile: true,
			content: `physics:
  max_speed: 6
  tick_rate: 120
bodies:
  labels: [Patches, Sunny]
zones:
  - label: Carrot
    x: 600
    y: 400
    size: 60
completion:
  policy: progress
  progress_threshold: 75
input:
  mode: gesture
hooks:
  timeout: 2s
logging:
  level: debug
  format: json
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6.0, cfg.Physics.MaxSpeed)
				assert.Equal(t, 120.0, cfg.Physics.TickRate)
				assert.Equal(t, 0.9, cfg.Physics.Restitution, "untouched field keeps its default")
				assert.Equal(t, []string{"Patches", "Sunny"}, cfg.Bodies.Labels)
				require.Len(t, cfg.Zones, 1)
				assert.Equal(t, 600.0, cfg.Zones[0].X)
				assert.Equal(t, completion.PolicyProgress, cfg.Completion.Policy)
				assert.Equal(t, 75.0, cfg.Completion.ProgressThreshold)
				assert.Equal(t, 2*time.Second, cfg.Hooks.Timeout)
				assert.Equal(t, "json", cfg.Logging.Format)

				ec := cfg.Engine()
				assert.Equal(t, input.ModeGesture, ec.Mode)
				assert.Equal(t, "Carrot", ec.Zones[0].Label)
				assert.False(t, ec.Zones[0].Random)
				assert.Equal(t, 2, ec.Gesture.CurlRequired)
			},
		},
		{
			name:       "missing file",
			createFile: false,
		},
		{
			name:       "malformed yaml",
			createFile: true,
			content:    "physics: [",
		},
		{
			name:       "restitution out of range",
			createFile: true,
			content:    "physics:\n  restitution: 1.5\n",
			wantErr:    ErrInvalid,
		},
		{
			name:       "non-positive max speed",
			createFile: true,
			content:    "physics:\n  max_speed: 0\n",
			wantErr:    ErrInvalid,
		},
		{
			name:       "no bodies",
			createFile: true,
			content:    "bodies:\n  labels: []\n",
			wantErr:    ErrInvalid,
		},
		{
			name:       "unknown policy",
			createFile: true,
			content:    "completion:\n  policy: slide\n",
			wantErr:    ErrInvalid,
		},
		{
			name:       "zone policy without zones",
			createFile: true,
			content:    "zones: []\n",
			wantErr:    ErrInvalid,
		},
		{
			name:       "curl count",
			createFile: true,
			content:    "gesture:\n  curl_required: 5\n",
			wantErr:    ErrInvalid,
		},
		{
			name:       "unknown mode",
			createFile: true,
			content:    "input:\n  mode: keyboard\n",
			wantErr:    ErrInvalid,
		},
		{
			name:       "progress threshold",
			createFile: true,
			content:    "completion:\n  progress_threshold: 120\n",
			wantErr:    ErrInvalid,
		},
		{
			name:       "camera rates",
			createFile: true,
			content:    "gesture:\n  source: camera\ncamera:\n  idle_fps: 20\n  active_fps: 10\n",
			wantErr:    ErrInvalid,
		},
		{
			name:       "camera source",
			createFile: true,
			content:    "gesture:\n  source: camera\ncamera:\n  device: 1\n  idle_after: 500ms\n",
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, SourceCamera, cfg.Gesture.Source)
				assert.Equal(t, 1, cfg.Camera.Device)
				assert.Equal(t, 500*time.Millisecond, cfg.Camera.IdleAfter)
				assert.Equal(t, 15, cfg.Camera.ActiveFPS)
			},
		},
		{
			name:       "zero curl slack",
			createFile: true,
			content:    "gesture:\n  curl_slack: 0\n",
			validate: func(t *testing.T, cfg *Config) {
				assert.Zero(t, cfg.Gesture.CurlSlack)
				assert.Zero(t, cfg.Engine().Gesture.CurlSlack)
			},
		},
		{
			name:       "log level",
			createFile: true,
			content:    "logging:\n  level: loud\n",
			wantErr:    ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "guineaday.yaml")
			if tt.createFile {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}

			cfg, err := Load(path)
			if tt.validate != nil {
				require.NoError(t, err)
				tt.validate(t, cfg)
				return
			}

			require.Error(t, err)
			assert.Nil(t, cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if !tt.createFile {
				assert.True(t, os.IsNotExist(err))
			}
		})
	}
}
