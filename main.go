package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"

	"github.com/moyoez/claimdesk/api"
	"github.com/moyoez/claimdesk/api/models"
	"github.com/moyoez/claimdesk/intake"
	"github.com/moyoez/claimdesk/notify"
	"github.com/moyoez/claimdesk/tool"
	"github.com/moyoez/claimdesk/transfer"
	"github.com/moyoez/claimdesk/types"
)

func main() {
	cfg := tool.SetFlags()

	// initialize logger
	tool.InitLogger()
	tool.SetLogMode(cfg.Log)

	appCfg, err := tool.LoadConfig(cfg.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	tool.ApplyFlagOverrides(&appCfg, cfg)
	tool.InitHTTPClients(tool.RequestTimeoutDuration(&appCfg))

	backend, err := transfer.NewBackendFromConfig(&appCfg)
	if err != nil {
		tool.DefaultLogger.Fatalf("Invalid backend configuration: %v", err)
	}

	if appCfg.NotifySocketPath != "" {
		models.SetNotifyDispatcher(notify.NewDispatcher(nil, appCfg.NotifySocketPath))
	}

	if cfg.LabelFiles != "" || cfg.DamageFiles != "" {
		if err := runOneShot(backend, appCfg, cfg); err != nil {
			tool.DefaultLogger.Errorf("%v", err)
			os.Exit(1)
		}
		return
	}

	apiServer := api.NewServer(appCfg, backend)
	go func() {
		if err := apiServer.Start(); err != nil {
			tool.DefaultLogger.Fatalf("API server startup failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	tool.DefaultLogger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		tool.DefaultLogger.Errorf("Shutdown: %v", err)
	}
}

// runOneShot submits local files once and prints the outcome as JSON.
func runOneShot(backend *transfer.Backend, appCfg types.AppConfig, cfg types.Config) error {
	labels, err := tool.LoadMediaFiles(cfg.LabelFiles)
	if err != nil {
		return err
	}
	damage, err := tool.LoadMediaFiles(cfg.DamageFiles)
	if err != nil {
		return err
	}

	opts := api.SessionOptions(appCfg)
	opts.Notifier = nil
	session := intake.NewSession("", backend, opts)
	if _, err := session.AddFiles(types.SlotLabel, labels); err != nil {
		return fmt.Errorf("label: %w", err)
	}
	if _, err := session.AddFiles(types.SlotDamage, damage); err != nil {
		return fmt.Errorf("damage: %w", err)
	}

	outcome, err := session.Submit(context.Background())
	if err != nil {
		if msg := session.Banner(); msg != "" {
			return errors.New(msg)
		}
		return err
	}

	tool.DefaultLogger.Info(outcome.DateBanner.English)
	if outcome.Eligible {
		tool.DefaultLogger.Infof("Claimable: %t", outcome.Claimable)
	}
	if outcome.Cost != nil {
		tool.DefaultLogger.Infof("Cost (%s): %s / %s", outcome.Cost.Model, outcome.Cost.USDLabel, outcome.Cost.THBLabel)
	}
	out, err := sonic.ConfigStd.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode outcome: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
