package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	fmt.Println("Mudra - Rock Paper Scissors")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	application, err := app.New(app.Config{
		Store: st,
		Defaults: store.Settings{
			MaxRounds:     cfg.MaxRounds,
			CountdownFrom: cfg.CountdownFrom,
			PPerfect:      cfg.PPerfect,
			Opponent:      cfg.Opponent,
		},
		CameraID:        cfg.CameraID,
		FPS:             cfg.FPS,
		Tick:            cfg.Tick,
		MotionThreshold: cfg.Motion,
		MotionRefresh:   cfg.MotionRefresh,
		PluginDir:       cfg.PluginDir,
	})
	if err != nil {
		log.Fatalf("Failed to initialize game: %v", err)
	}

	webDir := cfg.StaticDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Game:      application,
		Preview:   application.Preview(),
	})

	// The tray subscribes before Start so it sees the move out of Loading.
	var t *tray.Tray
	if cfg.Tray {
		t = newTray(application, cfg.Addr)
	}

	if err := application.Start(); err != nil {
		log.Fatalf("Failed to start game: %v", err)
	}

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if t != nil {
		t.Run()
		return
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	application.Stop()
}

// newTray builds the tray menu and subscribes it to the match.
func newTray(application *app.App, addr string) *tray.Tray {
	t := tray.New()
	application.Subscribe(t.Handle)
	t.OnStart(func() {
		if err := application.StartRound(); err != nil {
			log.Printf("Start from tray: %v", err)
		}
	})
	t.OnAdvance(func() {
		if err := application.Advance(); err != nil {
			log.Printf("Advance from tray: %v", err)
		}
	})
	t.OnOpen(func() { openBrowser(browserURL(addr)) })
	t.OnQuit(application.Stop)
	return t
}

// browserURL turns a listen address into a local URL.
func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	cmd := "xdg-open"
	if runtime.GOOS == "darwin" {
		cmd = "open"
	}
	if err := exec.Command(cmd, url).Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	// Check relative paths from current working directory
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

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
