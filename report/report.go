// Package report generates post-commit report files. Report jobs only
// read the store after a successful validation run has committed; they
// share no mutable state with the validation engine.
package report

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"csrep/database"
)

// Job is one report to generate. Generate writes the finished file to
// outPath and must be safe to run concurrently with other jobs.
type Job struct {
	Name     string
	Generate func(db *sqlx.DB, outPath string) error
}

// GenerateAll runs jobs on a bounded worker pool and returns the first
// failure after all jobs have finished. Finished files from other jobs are
// left in place; the operator re-runs only what failed.
func GenerateAll(db *sqlx.DB, outDir string, maxWorkers int, jobs []Job) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create report output dir: %w", err)
	}
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	batchID := uuid.NewString()[:8]
	log.Printf("INFO: starting report batch %s (%d jobs, %d workers)", batchID, len(jobs), maxWorkers)

	var g errgroup.Group
	g.SetLimit(maxWorkers)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			outPath := filepath.Join(outDir, fmt.Sprintf("%s_%s.csv", job.Name, batchID))
			if err := job.Generate(db, outPath); err != nil {
				log.Printf("ERROR: report %s failed: %v", job.Name, err)
				return fmt.Errorf("report %s: %w", job.Name, err)
			}
			log.Printf("Report generated successfully: %s", outPath)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Printf("INFO: report batch %s completed", batchID)
	return nil
}

// JurisdictionJobs are the two report families tied to one jurisdiction
// flag: a transaction detail listing and an excise-style TIN summary.
func JurisdictionJobs(flagColumn, state string) []Job {
	return []Job{
		{
			Name: "transaction_detail_" + state,
			Generate: func(db *sqlx.DB, outPath string) error {
				return writeTransactionDetail(db, outPath, flagColumn, state)
			},
		},
		{
			Name: "excise_summary_" + state,
			Generate: func(db *sqlx.DB, outPath string) error {
				return writeExciseSummary(db, outPath, flagColumn, state)
			},
		},
	}
}

func writeCSV(outPath string, header []string, rows [][]string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", outPath, err)
	}
	return nil
}

func writeTransactionDetail(db *sqlx.DB, outPath, flagColumn, state string) error {
	txns, err := database.GetTransactionsForJurisdiction(db, flagColumn, state)
	if err != nil {
		return err
	}
	rows := make([][]string, len(txns))
	for i, t := range txns {
		rows[i] = []string{
			t.TransactionID, t.ReportingRegistrantNum, t.TransactionDate,
			t.ShipToCustomer, t.ShipToName, t.State,
			strconv.FormatFloat(t.Quantity, 'f', -1, 64), t.NdcNum,
		}
	}
	header := []string{
		"transaction_id", "reporting_registrant_num", "transaction_date",
		"ship_to_customer", "ship_to_name", "state", "quantity", "ndc_num",
	}
	return writeCSV(outPath, header, rows)
}

func writeExciseSummary(db *sqlx.DB, outPath, flagColumn, state string) error {
	summary, err := database.GetExciseSummaryByTin(db, flagColumn, state)
	if err != nil {
		return err
	}
	rows := make([][]string, len(summary))
	for i, s := range summary {
		rows[i] = []string{
			s.TinNumber, s.CorporateName,
			strconv.FormatFloat(s.TotalQuantity, 'f', -1, 64),
			strconv.FormatFloat(s.TotalMme, 'f', -1, 64),
		}
	}
	header := []string{"tin_number", "corporate_name", "total_quantity", "total_mme"}
	return writeCSV(outPath, header, rows)
}
