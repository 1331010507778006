// Package config loads and validates the engine's TOML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full configuration tree. Every tuning parameter the engine
// consumes lives here; nothing is hardcoded in the components.
type Config struct {
	User      UserConfig      `toml:"user"`
	Data      DataConfig      `toml:"data"`
	Engine    EngineConfig    `toml:"engine"`
	Learn     LearnConfig     `toml:"learn"`
	Quiz      QuizConfig      `toml:"quiz"`
	MCQ       MCQConfig       `toml:"mcq"`
	Spelling  SpellingConfig  `toml:"spelling"`
	Game      GameConfig      `toml:"game"`
	Suggest   SuggestConfig   `toml:"suggest"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Capture   CaptureConfig   `toml:"capture"`
	Server    ServerConfig    `toml:"server"`
	Tray      TrayConfig      `toml:"tray"`
}

// UserConfig identifies the local user the session belongs to.
type UserConfig struct {
	ID string `toml:"id"`
}

// DataConfig locates the persistence directory. An empty Dir is resolved
// by the caller (typically to a dot directory under the user's home).
type DataConfig struct {
	Dir string `toml:"dir"`
}

// EngineConfig tunes the smoothing and streak engine.
type EngineConfig struct {
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
	StreakRequired      int     `toml:"streak_required"`
	CooldownMs          int     `toml:"cooldown_ms"`
	SensorTimeoutMs     int     `toml:"sensor_timeout_ms"`
	FeedbackMs          int     `toml:"feedback_ms"`
}

// Cooldown returns the post-confirmation cooldown as a duration.
func (c EngineConfig) Cooldown() time.Duration { return time.Duration(c.CooldownMs) * time.Millisecond }

// SensorTimeout returns the sample-gap timeout as a duration.
func (c EngineConfig) SensorTimeout() time.Duration {
	return time.Duration(c.SensorTimeoutMs) * time.Millisecond
}

// Feedback returns how long a mode shows feedback before accepting input again.
func (c EngineConfig) Feedback() time.Duration { return time.Duration(c.FeedbackMs) * time.Millisecond }

// LearnConfig tunes the sequential learning mode.
type LearnConfig struct {
	RequiredCorrect int `toml:"required_correct"`
}

// QuizConfig tunes the quiz mode.
type QuizConfig struct {
	Rounds int `toml:"rounds"`
}

// MCQConfig tunes the multiple-choice mode.
type MCQConfig struct {
	Rounds           int     `toml:"rounds"`
	ChoiceCooldownMs int     `toml:"choice_cooldown_ms"`
	WeakBias         float64 `toml:"weak_bias"`
}

// ChoiceCooldown returns the minimum interval between pinch selections.
func (c MCQConfig) ChoiceCooldown() time.Duration {
	return time.Duration(c.ChoiceCooldownMs) * time.Millisecond
}

// SpellingConfig supplies the spelling word list. Per-word alphabet
// validation happens when the mode starts, not at load.
type SpellingConfig struct {
	Words []string `toml:"words"`
}

// GameConfig tunes the snake game loop.
type GameConfig struct {
	TickMs           int     `toml:"tick_ms"`
	GridWidth        int     `toml:"grid_width"`
	GridHeight       int     `toml:"grid_height"`
	Growth           int     `toml:"growth"`
	HandSpaceFrac    float64 `toml:"hand_space_frac"`
	SteerNeutralBand float64 `toml:"steer_neutral_band"`
	TrackingWarnMs   int     `toml:"tracking_warn_ms"`
}

// Tick returns the game tick interval as a duration.
func (c GameConfig) Tick() time.Duration { return time.Duration(c.TickMs) * time.Millisecond }

// TrackingWarn returns the hand-loss duration that triggers a telemetry warning.
func (c GameConfig) TrackingWarn() time.Duration {
	return time.Duration(c.TrackingWarnMs) * time.Millisecond
}

// SuggestConfig tunes weak-letter detection used by the MCQ target bias.
type SuggestConfig struct {
	MinAttempts int     `toml:"min_attempts"`
	Accuracy    float64 `toml:"accuracy"`
}

// TelemetryConfig tunes the aggregator's queue and checkpoint cadence.
type TelemetryConfig struct {
	CheckpointMs int `toml:"checkpoint_ms"`
	QueueSize    int `toml:"queue_size"`
}

// Checkpoint returns the rollup checkpoint interval as a duration.
func (c TelemetryConfig) Checkpoint() time.Duration {
	return time.Duration(c.CheckpointMs) * time.Millisecond
}

// CaptureConfig tunes the camera and recognizer pipeline.
// MotionThreshold is the percentage of changed pixels that wakes the
// pipeline from the idle frame rate.
type CaptureConfig struct {
	CameraIndex     int     `toml:"camera_index"`
	Width           int     `toml:"width"`
	Height          int     `toml:"height"`
	IdleFPS         int     `toml:"idle_fps"`
	ActiveFPS       int     `toml:"active_fps"`
	IdleTimeoutMs   int     `toml:"idle_timeout_ms"`
	MotionThreshold float64 `toml:"motion_threshold"`
	PredIntervalMs  int     `toml:"pred_interval_ms"`
}

// IdleTimeout returns how long without a hand before the pipeline idles down.
func (c CaptureConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMs) * time.Millisecond
}

// PredInterval returns the minimum interval between recognizer calls.
func (c CaptureConfig) PredInterval() time.Duration {
	return time.Duration(c.PredIntervalMs) * time.Millisecond
}

// ServerConfig tunes the HTTP/WebSocket projection.
type ServerConfig struct {
	Enabled      bool   `toml:"enabled"`
	Addr         string `toml:"addr"`
	StaticDir    string `toml:"static_dir"`
	EnableStream bool   `toml:"enable_stream"`
	BroadcastMs  int    `toml:"broadcast_ms"`
}

// Broadcast returns the WS state broadcast interval as a duration.
func (c ServerConfig) Broadcast() time.Duration {
	return time.Duration(c.BroadcastMs) * time.Millisecond
}

// TrayConfig enables the optional system tray consumer.
type TrayConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the configuration used when no file overrides are present.
func Default() Config {
	return Config{
		User: UserConfig{ID: "guest"},
		Engine: EngineConfig{
			ConfidenceThreshold: 0.70,
			StreakRequired:      5,
			CooldownMs:          1000,
			SensorTimeoutMs:     500,
			FeedbackMs:          1200,
		},
		Learn: LearnConfig{RequiredCorrect: 1},
		Quiz:  QuizConfig{Rounds: 10},
		MCQ: MCQConfig{
			Rounds:           10,
			ChoiceCooldownMs: 1000,
			WeakBias:         0.6,
		},
		Spelling: SpellingConfig{
			Words: []string{"HELLO", "YES", "NO", "LOVE", "NAME"},
		},
		Game: GameConfig{
			TickMs:           120,
			GridWidth:        32,
			GridHeight:       18,
			Growth:           2,
			HandSpaceFrac:    0.21,
			SteerNeutralBand: 0.08,
			TrackingWarnMs:   600,
		},
		Suggest: SuggestConfig{
			MinAttempts: 6,
			Accuracy:    0.70,
		},
		Telemetry: TelemetryConfig{
			CheckpointMs: 5000,
			QueueSize:    256,
		},
		Capture: CaptureConfig{
			CameraIndex:     0,
			Width:           1280,
			Height:          720,
			IdleFPS:         5,
			ActiveFPS:       15,
			IdleTimeoutMs:   2000,
			MotionThreshold: 1.0,
			PredIntervalMs:  300,
		},
		Server: ServerConfig{
			Enabled:     true,
			Addr:        ":8080",
			BroadcastMs: 100,
		},
	}
}

// Load reads a TOML config from the given path over the defaults.
// A missing file is not an error; the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return Config{}, fmt.Errorf("stat config: %w", err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.User.ID == "" {
		return fmt.Errorf("user.id must not be empty")
	}
	if c.Engine.ConfidenceThreshold <= 0 || c.Engine.ConfidenceThreshold > 1 {
		return fmt.Errorf("engine.confidence_threshold %v out of range (0, 1]", c.Engine.ConfidenceThreshold)
	}
	if c.Engine.StreakRequired < 1 {
		return fmt.Errorf("engine.streak_required %d must be at least 1", c.Engine.StreakRequired)
	}
	if c.Engine.CooldownMs < 0 || c.Engine.SensorTimeoutMs < 0 || c.Engine.FeedbackMs < 0 {
		return fmt.Errorf("engine durations must not be negative")
	}
	if c.Learn.RequiredCorrect < 1 {
		return fmt.Errorf("learn.required_correct %d must be at least 1", c.Learn.RequiredCorrect)
	}
	if c.Quiz.Rounds < 1 {
		return fmt.Errorf("quiz.rounds %d must be at least 1", c.Quiz.Rounds)
	}
	if c.MCQ.Rounds < 1 {
		return fmt.Errorf("mcq.rounds %d must be at least 1", c.MCQ.Rounds)
	}
	if c.MCQ.WeakBias < 0 || c.MCQ.WeakBias > 1 {
		return fmt.Errorf("mcq.weak_bias %v out of range [0, 1]", c.MCQ.WeakBias)
	}
	if len(c.Spelling.Words) == 0 {
		return fmt.Errorf("spelling.words must not be empty")
	}
	if c.Game.TickMs <= 0 {
		return fmt.Errorf("game.tick_ms %d must be positive", c.Game.TickMs)
	}
	if c.Game.GridWidth < 8 || c.Game.GridHeight < 8 {
		return fmt.Errorf("game grid %dx%d too small, need at least 8x8", c.Game.GridWidth, c.Game.GridHeight)
	}
	if c.Game.Growth < 1 {
		return fmt.Errorf("game.growth %d must be at least 1", c.Game.Growth)
	}
	if c.Game.HandSpaceFrac <= 0 || c.Game.HandSpaceFrac > 0.5 {
		return fmt.Errorf("game.hand_space_frac %v out of range (0, 0.5]", c.Game.HandSpaceFrac)
	}
	if c.Game.SteerNeutralBand < 0 || c.Game.SteerNeutralBand >= 0.5 {
		return fmt.Errorf("game.steer_neutral_band %v out of range [0, 0.5)", c.Game.SteerNeutralBand)
	}
	if c.Suggest.MinAttempts < 1 {
		return fmt.Errorf("suggest.min_attempts %d must be at least 1", c.Suggest.MinAttempts)
	}
	if c.Telemetry.QueueSize < 1 {
		return fmt.Errorf("telemetry.queue_size %d must be at least 1", c.Telemetry.QueueSize)
	}
	if c.Capture.IdleFPS <= 0 || c.Capture.ActiveFPS <= 0 {
		return fmt.Errorf("capture fps values must be positive")
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty when the server is enabled")
	}
	return nil
}
