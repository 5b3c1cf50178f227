package tool

import (
	"flag"

	"github.com/moyoez/claimdesk/types"
)

// SetFlags parses CLI flags and returns the override config.
func SetFlags() types.Config {
	var cfg types.Config
	flag.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	flag.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	flag.StringVar(&cfg.UseBackendURL, "useBackendURL", "", "override claim backend base URL")
	flag.IntVar(&cfg.UsePort, "usePort", 0, "override local API port")
	flag.StringVar(&cfg.UseModel, "useModel", "", "override model used for cost accounting")
	flag.BoolVar(&cfg.UseAllowRemote, "useAllowRemote", false, "serve the intake API to non-loopback clients (e.g. a phone on the same network)")
	flag.StringVar(&cfg.LabelFiles, "label", "", "one-shot mode: comma separated label image paths")
	flag.StringVar(&cfg.DamageFiles, "damage", "", "one-shot mode: comma separated damage image paths or a single video path")
	flag.Parse()
	return cfg
}
