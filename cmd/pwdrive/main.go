// Package main provides the entry point for the pwdrive CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hollowroad/pwdrive/internal/assert"
	"github.com/hollowroad/pwdrive/internal/authstate"
	"github.com/hollowroad/pwdrive/internal/config"
	"github.com/hollowroad/pwdrive/internal/objects"
	"github.com/hollowroad/pwdrive/internal/session"
	"github.com/hollowroad/pwdrive/internal/telemetry"
	"github.com/hollowroad/pwdrive/pkg/version"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	gotoURL := flag.String("goto", "", "navigate the acquired page to this URL and print its title")
	profileName := flag.String("profile", "", "named auth profile to resolve browser kind/headless/auth file from")
	profilesFile := flag.String("profiles-file", "", "path to a profiles.yaml file (see internal/authstate.LoadProfiles)")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("pwdrive %s\n", version.Full())
		return
	}

	cfg := config.Load()
	setupLogging(cfg.LogLevel)
	cfg.Validate()

	if *profileName != "" {
		applyProfile(cfg, *profilesFile, *profileName)
	}

	printBanner()

	if *metricsAddr != "" {
		cfg.MetricsEnabled = true
		cfg.MetricsAddr = *metricsAddr
	}
	if cfg.MetricsEnabled {
		startMetricsServer(cfg.MetricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	broker := session.NewBroker()
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := broker.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("error while closing session broker")
		}
	}()

	bcfg := session.BrokerConfig{
		BrowserKind:   cfg.BrowserKind,
		Headless:      cfg.Headless,
		CDPEndpoint:   cfg.CDPEndpoint,
		LaunchServer:  cfg.LaunchServer,
		AuthFile:      cfg.AuthFile,
		WaitUntil:     cfg.WaitUntil,
		Scope:         cfg.Scope,
		Refresh:       cfg.Refresh,
		NodePath:      cfg.NodePath,
		DriverPath:    cfg.DriverPath,
		LaunchTimeout: cfg.LaunchTimeout,
	}

	acquireCtx, cancel := context.WithTimeout(ctx, cfg.LaunchTimeout)
	ready, err := broker.Acquire(acquireCtx, bcfg)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("failed to acquire a browser session: "+err.Error()))
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := ready.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("error while closing session")
		}
	}()

	log.Info().Str("browser_kind", bcfg.BrowserKind).Bool("headless", bcfg.Headless).Msg("session acquired")

	if *gotoURL != "" {
		if err := navigate(ctx, ready, *gotoURL, cfg.WaitUntil, cfg.DefaultTimeout); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("navigation failed: "+err.Error()))
			os.Exit(1)
		}
	}
}

func navigate(ctx context.Context, ready *session.Ready, url, waitUntil string, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	frame := ready.Page.MainFrame()
	locator := frame.Locator("body")

	opts := objects.GotoOptions{WaitUntil: waitUntil, Timeout: timeout}
	if _, err := ready.Page.Goto(navCtx, url, opts); err != nil {
		return err
	}

	if err := assert.Expect(locator, assert.WithTimeout(timeout)).ToBeVisible(navCtx); err != nil {
		return fmt.Errorf("page body never became visible: %w", err)
	}

	title, err := ready.Page.Title(navCtx)
	if err != nil {
		return err
	}
	fmt.Println(labelStyle.Render("title:") + " " + valueStyle.Render(title))
	return nil
}

func applyProfile(cfg *config.Config, profilesFile, name string) {
	profiles, err := authstate.LoadProfiles(profilesFile)
	if err != nil {
		log.Warn().Err(err).Str("path", profilesFile).Msg("failed to load auth profiles, ignoring --profile")
		return
	}
	entry, ok := profiles.Resolve(name)
	if !ok {
		log.Warn().Str("profile", name).Msg("profile not found, using flag/env defaults")
		return
	}
	cfg.BrowserKind = entry.BrowserKind
	cfg.Headless = entry.Headless
	cfg.AuthFile = entry.AuthFile
}

func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func printBanner() {
	fmt.Println(titleStyle.Render("pwdrive") + " " + labelStyle.Render(version.Full()))
	log.Info().
		Str("version", version.Full()).
		Str("go_version", version.GoVersion()).
		Msg("starting pwdrive")
}
