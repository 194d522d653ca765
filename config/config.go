package config

import (
	"encoding/json"
	"os"
	"sync"

	"csrep/validation"
)

type Config struct {
	DatabasePath           string   `json:"databasePath"`
	SourceFolderPath       string   `json:"sourceFolderPath"`
	ReportOutputPath       string   `json:"reportOutputPath"`
	Validators             []string `json:"validators"`
	JurisdictionFlagColumn string   `json:"jurisdictionFlagColumn"`
	JurisdictionState      string   `json:"jurisdictionState"`
	MaxReportWorkers       int      `json:"maxReportWorkers"`
}

var (
	cfg Config
	mu  sync.RWMutex
)

const configFilePath = "./csrep_config.json"

func applyDefaults(c *Config) {
	if c.DatabasePath == "" {
		c.DatabasePath = "./csrep.db"
	}
	if c.ReportOutputPath == "" {
		c.ReportOutputPath = "./reports"
	}
	if len(c.Validators) == 0 {
		c.Validators = append([]string{}, validation.DefaultOrder...)
	}
	if c.JurisdictionFlagColumn == "" {
		c.JurisdictionFlagColumn = "include_in_ny_state_and_excise_tax_reports"
	}
	if c.JurisdictionState == "" {
		c.JurisdictionState = "NY"
	}
	if c.MaxReportWorkers == 0 {
		c.MaxReportWorkers = 4
	}
}

func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	file, err := os.ReadFile(configFilePath)
	if err != nil {
		applyDefaults(&cfg)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		// Caller still gets a usable default config alongside the error.
		return cfg, err
	}

	var tempCfg Config
	if err := json.Unmarshal(file, &tempCfg); err != nil {
		applyDefaults(&cfg)
		return cfg, err
	}
	applyDefaults(&tempCfg)
	cfg = tempCfg

	return cfg, nil
}

func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	applyDefaults(&newCfg)

	file, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(configFilePath, file, 0644); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}
