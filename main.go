package main

import (
	"errors"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"csrep/config"
	"csrep/database"
	"csrep/loader"
	"csrep/report"
	"csrep/validation"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("WARN: Failed to load config file: %v. Using defaults.", err)
	}

	log.Println("Connecting to database...")
	dbConn, err := sqlx.Open("sqlite3", cfg.DatabasePath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer dbConn.Close()
	log.Println("Database connection successful.")

	if err := database.InitSchema(dbConn); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}

	if cfg.SourceFolderPath != "" {
		log.Printf("Loading source data from %s...", cfg.SourceFolderPath)
		if err := loader.LoadFolder(dbConn, cfg.SourceFolderPath); err != nil {
			log.Fatalf("Data loading failed: %v", err)
		}
	} else {
		log.Println("No source folder configured; validating existing data.")
	}

	progress := func(name string, percent int) {
		log.Printf("INFO: [%s] %d%%", name, percent)
	}

	err = validation.Run(dbConn, cfg.Validators, cfg.JurisdictionFlagColumn,
		cfg.JurisdictionState, progress)
	if err != nil {
		var uerr validation.UserError
		if errors.As(err, &uerr) {
			log.Printf("ERROR: validation failed: %v", err)
			log.Fatalf("\n%s", uerr.UserMessage())
		}
		log.Fatalf("validation failed: %v", err)
	}
	log.Println("All validations passed.")

	jobs := report.JurisdictionJobs(cfg.JurisdictionFlagColumn, cfg.JurisdictionState)
	if err := report.GenerateAll(dbConn, cfg.ReportOutputPath, cfg.MaxReportWorkers, jobs); err != nil {
		log.Fatalf("Report generation failed: %v", err)
	}
	log.Println("All reports have been generated successfully!")
}
