package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/san-kum/glide/internal/storage"
	"github.com/spf13/cobra"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir())
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tDT\tSOC\tE_TOTAL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%.3f%%\t%.2f\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Summary.SoC*100,
			run.Summary.Total,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir())
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	ledger, err := st.LoadLedger(runID)
	if err != nil {
		return err
	}
	if len(ledger) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(ledger))
	fmt.Println(renderLedgerChart(ledger))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir())
	if csvOut == "" {
		return st.CopyLedger(args[0], os.Stdout)
	}

	ledger, err := st.LoadLedger(args[0])
	if err != nil {
		return err
	}
	if err := storage.ExportCSV(csvOut, ledger); err != nil {
		return err
	}
	fmt.Printf("exported %d rows to %s\n", len(ledger), csvOut)
	return nil
}
