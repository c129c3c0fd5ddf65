package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/Readm/tring_sim/config"
	"github.com/Readm/tring_sim/store"
)

// Input contains the flags shared by every command.
type Input struct {
	configFile string
	configName string
	envFile    string
	logLevel   string
	jsonLogs   bool
	storePath  string
	noStore    bool
}

func addGlobalFlags(flags *pflag.FlagSet, input *Input) {
	flags.StringVarP(&input.configFile, "config", "c", "", "path to a YAML config file")
	flags.StringVarP(&input.configName, "config-name", "p", "", "name of a predefined config (see `configs`)")
	flags.StringVar(&input.envFile, "env-file", "", "dotenv file loaded before the config (TRING_* overrides)")
	flags.StringVar(&input.logLevel, "log-level", "", "log level, overrides the config's log.level")
	flags.BoolVar(&input.jsonLogs, "json-logs", false, "log as JSON")
	flags.StringVar(&input.storePath, "store", "", "run database path, overrides the config's store.path")
	flags.BoolVar(&input.noStore, "no-store", false, "do not record runs")
}

// loadConfig reads --config, or clones --config-name, or falls back to the
// default config. Environment overrides apply in every case.
func (i *Input) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case i.configFile != "" && i.configName != "":
		return nil, errors.New("--config and --config-name are mutually exclusive")
	case i.configFile != "":
		cfg, err = config.Load(i.configFile)
	case i.configName != "":
		cfg, err = config.ByName(i.configName)
		if err == nil {
			cfg, err = config.Finish(cfg)
		}
	default:
		cfg, err = config.Finish(config.Default())
	}
	if err != nil {
		return nil, err
	}
	if i.storePath != "" {
		cfg.Store.Path = i.storePath
	}
	return cfg, nil
}

// openStore returns nil when runs are not recorded.
func (i *Input) openStore(cfg *config.Config) (*store.Store, error) {
	if i.noStore {
		return nil, nil
	}
	return store.New(cfg.Store.Path)
}
