package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"
	"com.charlotteservicehub.autotext/internal/boot"
	"com.charlotteservicehub.autotext/internal/callstore"
	"com.charlotteservicehub.autotext/internal/devicestore"
	"com.charlotteservicehub.autotext/internal/handlers"
	"com.charlotteservicehub.autotext/internal/logstore"
	"com.charlotteservicehub.autotext/internal/prefstore"
	"com.charlotteservicehub.autotext/internal/promptstore"
	"com.charlotteservicehub.autotext/internal/service/dispatch"
	"com.charlotteservicehub.autotext/internal/service/messenger"
)

// TemplateFile overrides the default message templates from a JSON file and
// reapplies them whenever the file changes.
type TemplateFile struct {
	path    string
	prefs   *prefstore.Store
	watcher *fsnotify.Watcher
}

type templateFileContents struct {
	MissedCall string `json:"missedCall"`
	FollowUp   string `json:"followUp"`
}

func NewTemplateFile(path string, prefs *prefstore.Store) *TemplateFile {
	return &TemplateFile{path: path, prefs: prefs}
}

func (t *TemplateFile) Apply() error {
	raw, err := os.ReadFile(t.path)
	if err != nil {
		return err
	}

	contents := templateFileContents{}
	if err := json.Unmarshal(raw, &contents); err != nil {
		return err
	}

	return t.prefs.SetTemplates(contents.MissedCall, contents.FollowUp)
}

func (t *TemplateFile) Watch() {
	var err error

	t.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("watcher: %+v", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-t.watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) {
					log.Infof("templates file changed: %s", event.Name)
					if err := t.Apply(); err != nil {
						log.Errorf("applying templates file: %+v", err)
					}
				}
			case err, ok := <-t.watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("watcher: %+v", err)
			}
		}
	}()

	err = t.watcher.Add(t.path)
	if err != nil {
		log.Fatalf("watcher: %+v", err)
	}
}

func (t *TemplateFile) Close() {
	if t.watcher != nil {
		t.watcher.Close()
	}
}

func main() {
	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}

	prefs, err := prefstore.New(config)
	if err != nil {
		log.Fatalf("opening preference store: %+v", err)
	}
	defer prefs.Close()

	logs, err := logstore.New(config)
	if err != nil {
		log.Fatalf("opening message log: %+v", err)
	}
	defer logs.Close()

	calls, err := callstore.New(config)
	if err != nil {
		log.Fatalf("opening call journal: %+v", err)
	}
	defer calls.Close()

	prompts, err := promptstore.New(config)
	if err != nil {
		log.Fatalf("opening prompt store: %+v", err)
	}
	defer prompts.Close()

	devices, err := devicestore.New(config)
	if err != nil {
		log.Fatalf("opening device store: %+v", err)
	}
	defer devices.Close()

	outbound := messenger.New(config)

	dispatcher, err := dispatch.New(config, prefs, calls, outbound, logs, prompts)
	if err != nil {
		log.Fatalf("creating dispatch service: %+v", err)
	}

	if config.TemplatesFile != "" {
		templates := NewTemplateFile(config.TemplatesFile, prefs)
		defer templates.Close()
		if err := templates.Apply(); err != nil {
			log.Errorf("applying templates file: %+v", err)
		}
		templates.Watch()
	}

	server := echo.New()
	server.Use(middleware.BodyLimit("1M"))
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(echoprometheus.NewMiddleware("autotext"))
	server.Use(middleware.Recover())

	server.Logger.SetLevel(log.INFO)
	if config.IsDevelopment() {
		server.Logger.SetLevel(log.DEBUG)
	}

	headers := []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization}
	server.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{config.Server.Origins},
		AllowHeaders:     headers,
		AllowCredentials: true,
	}))

	server.POST("/ingest", handlers.Ingest(devices, dispatcher, calls))
	server.POST("/receipts", handlers.DeliveryReceipt(logs))

	server.POST("/devices", handlers.RegisterDevice(devices, config.PairingCode))
	server.GET("/devices/:deviceID/key", handlers.GetDeviceKey(devices))
	server.POST("/devices/:deviceID/rotate", handlers.RotateDeviceKey(devices))

	server.GET("/prompts/:deviceID", handlers.PendingPrompts(prompts))
	server.POST("/prompts/:promptID/handled", handlers.MarkPromptHandled(prompts))

	admin := server.Group("/admin", handlers.AdminAuth(config.AdminSecret))
	admin.GET("/status", handlers.Status(prefs, logs, config.Mode))
	admin.GET("/preferences", handlers.GetPreferences(prefs))
	admin.PUT("/preferences", handlers.PutPreferences(prefs))
	admin.POST("/preferences/reset", handlers.ResetPreferences(prefs))
	admin.POST("/templates/reset", handlers.ResetTemplates(prefs))
	admin.POST("/blocked", handlers.AddBlockedNumber(prefs))
	admin.DELETE("/blocked", handlers.RemoveBlockedNumber(prefs))
	admin.GET("/logs", handlers.RecentLogs(logs))
	admin.GET("/logs/count", handlers.CountLogs(logs))
	admin.POST("/logs/purge", handlers.PurgeLogs(logs))
	admin.DELETE("/logs", handlers.ClearLogs(logs))
	admin.POST("/test-send", handlers.TestSend(outbound, logs))

	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(":" + config.Server.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := server.Start(":" + config.Server.Port); err != nil && err != http.ErrServerClosed {
			server.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Logger.Fatal(err)
	}
}
