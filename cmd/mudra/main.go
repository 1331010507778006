// Mudra is a camera-driven fingerspelling trainer: learn, quiz,
// multiple-choice, and spelling modes plus a gesture-steered snake game,
// with progress tracking and a local web dashboard.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/alphabet"
	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/mode"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/telemetry"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	addr := flag.String("addr", "", "listen address override")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("main: load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	dataDir, err := resolveDataDir(cfg.Data.Dir)
	if err != nil {
		log.Fatalf("main: resolve data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "mudra.db"))
	if err != nil {
		log.Fatalf("main: open store: %v", err)
	}

	agg, err := telemetry.Open(telemetry.AggregatorConfig{
		Dir:                dataDir,
		UserID:             cfg.User.ID,
		QueueSize:          cfg.Telemetry.QueueSize,
		Checkpoint:         cfg.Telemetry.Checkpoint(),
		SuggestMinAttempts: cfg.Suggest.MinAttempts,
		SuggestAccuracy:    cfg.Suggest.Accuracy,
	})
	if err != nil {
		st.Close()
		log.Fatalf("main: open telemetry: %v", err)
	}

	orch := session.New(session.Config{
		UserID:        cfg.User.ID,
		Tick:          cfg.Game.Tick(),
		SensorTimeout: cfg.Engine.SensorTimeout(),
		Smoother: gesture.SmootherConfig{
			ConfidenceThreshold: cfg.Engine.ConfidenceThreshold,
			StreakRequired:      cfg.Engine.StreakRequired,
			Cooldown:            cfg.Engine.Cooldown(),
		},
		Learn: mode.LearnConfig{
			Letters:          alphabet.Letters(),
			RequiredCorrect:  cfg.Learn.RequiredCorrect,
			FeedbackDuration: cfg.Engine.Feedback(),
		},
		Quiz: mode.QuizConfig{
			Letters:          alphabet.Letters(),
			Rounds:           cfg.Quiz.Rounds,
			FeedbackDuration: cfg.Engine.Feedback(),
		},
		MCQ: mode.MCQConfig{
			Letters:          alphabet.Letters(),
			Rounds:           cfg.MCQ.Rounds,
			ChoiceCooldown:   cfg.MCQ.ChoiceCooldown(),
			WeakBias:         cfg.MCQ.WeakBias,
			FeedbackDuration: cfg.Engine.Feedback(),
		},
		Spelling: mode.SpellingConfig{
			Words:            cfg.Spelling.Words,
			FeedbackDuration: cfg.Engine.Feedback(),
		},
		Game: game.Config{
			GridWidth:    cfg.Game.GridWidth,
			GridHeight:   cfg.Game.GridHeight,
			Growth:       cfg.Game.Growth,
			NeutralBand:  cfg.Game.SteerNeutralBand,
			TrackingWarn: cfg.Game.TrackingWarn(),
		},
		Events:    agg,
		Summaries: st.Archiver(),
		Weak:      agg.WeakLetters,
	})
	if err := orch.Start(); err != nil {
		log.Fatalf("main: start orchestrator: %v", err)
	}

	eng := app.New(app.Config{
		Camera: capture.Config{
			DeviceID: cfg.Capture.CameraIndex,
			Width:    cfg.Capture.Width,
			Height:   cfg.Capture.Height,
			FPS:      cfg.Capture.IdleFPS,
			Mirror:   true,
		},
		MotionThreshold: cfg.Capture.MotionThreshold,
		IdleFPS:         cfg.Capture.IdleFPS,
		ActiveFPS:       cfg.Capture.ActiveFPS,
		IdleTimeout:     cfg.Capture.IdleTimeout(),
		PredInterval:    cfg.Capture.PredInterval(),
		HandSpaceFrac:   cfg.Game.HandSpaceFrac,
		Preview:         cfg.Server.EnableStream,
	}, orch)
	if err := eng.Start(); err != nil {
		log.Printf("main: camera unavailable (%v), gesture input limited to the API", err)
	}

	var srv *server.Server
	if cfg.Server.Enabled {
		staticDir := cfg.Server.StaticDir
		if staticDir == "" {
			staticDir = findWebDir()
		}
		srv = server.New(server.Config{
			UserID:       cfg.User.ID,
			StaticDir:    staticDir,
			Engine:       orch,
			Telemetry:    agg,
			Store:        st,
			Frames:       eng,
			EnableStream: cfg.Server.EnableStream,
			Broadcast:    cfg.Server.Broadcast(),
		})
		go func() {
			log.Printf("main: serving on %s", cfg.Server.Addr)
			if err := srv.ListenAndServe(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("main: server: %v", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if cfg.Tray.Enabled {
		runTray(cfg, orch, eng, sigCh)
	} else {
		sig := <-sigCh
		log.Printf("main: received %s, shutting down", sig)
	}

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("main: server shutdown: %v", err)
		}
		cancel()
	}
	eng.Stop()
	orch.Stop()
	if err := agg.Close(); err != nil {
		log.Printf("main: close telemetry: %v", err)
	}
	if err := st.Close(); err != nil {
		log.Printf("main: close store: %v", err)
	}
}

// runTray blocks in the systray loop until the user quits or a signal
// arrives. systray wants the main goroutine on some platforms, which is
// why the signal wait moves into a helper goroutine here.
func runTray(cfg config.Config, orch *session.Orchestrator, eng *app.App, sigCh <-chan os.Signal) {
	tr := tray.New()
	tr.OnToggle(func(enabled bool) {
		eng.SetEnabled(enabled)
		log.Printf("main: capture enabled=%v", enabled)
	})
	tr.OnMode(func(kind string) {
		if err := orch.SwitchMode(kind); err != nil {
			log.Printf("main: switch to %s: %v", kind, err)
		}
	})
	tr.OnStop(func() {
		if err := orch.StopSession(); err != nil && !errors.Is(err, session.ErrNoActiveSession) {
			log.Printf("main: stop session: %v", err)
		}
	})
	tr.OnOpenUI(func() {
		openBrowser(uiURL(cfg.Server.Addr))
	})

	stopStatus := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tr.SetStatus(tray.StatusLine(orch.Snapshot()))
			case <-stopStatus:
				return
			}
		}
	}()
	go func() {
		sig := <-sigCh
		log.Printf("main: received %s, shutting down", sig)
		tray.Quit()
	}()

	tr.Run()
	close(stopStatus)
}

// resolveDataDir returns the configured directory, or ~/.mudra when the
// config leaves it empty, creating it either way.
func resolveDataDir(dir string) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".mudra")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// findWebDir searches for the dashboard assets in common locations.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

// uiURL turns a listen address into a browsable URL.
func uiURL(addr string) string {
	if addr == "" {
		return "http://localhost:8080"
	}
	if addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("main: open browser: %v", err)
	}
}
