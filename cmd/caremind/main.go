package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/FlosMume/CareMind/internal/app"
	"github.com/FlosMume/CareMind/internal/config"
	"github.com/FlosMume/CareMind/internal/logging"
)

func main() {
	var (
		inFile     string
		outFile    string
		offlineDir string
		cachePath  string
		noOnline   bool
		noDrugBank bool
	)

	rootCmd := &cobra.Command{
		Use:           "caremind",
		Short:         "Build a drug knowledge table from NMPA labels and DrugBank",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if offlineDir != "" {
				cfg.Sources.Offline.Dir = offlineDir
			}
			if cachePath != "" {
				cfg.Cache.Path = cachePath
			}
			if noOnline {
				cfg.Sources.NMPA.Disabled = true
			}
			if noDrugBank {
				cfg.Sources.DrugBank.Disabled = true
			}

			logger := logging.New(cfg.Logging.Level)

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Run(cmd.Context(), inFile, outFile)
		},
	}

	rootCmd.Flags().StringVar(&inFile, "in", "", "drug list file, one name per line")
	rootCmd.Flags().StringVar(&outFile, "out", "", "output XLSX path")
	rootCmd.Flags().StringVar(&offlineDir, "offline-dir", "", "local NMPA label directory (optional)")
	rootCmd.Flags().StringVar(&cachePath, "cache", "", "resolved-record cache database path (optional)")
	rootCmd.Flags().BoolVar(&noOnline, "no-nmpa-online", false, "disable NMPA online search")
	rootCmd.Flags().BoolVar(&noDrugBank, "no-drugbank", false, "disable DrugBank API")
	_ = rootCmd.MarkFlagRequired("in")
	_ = rootCmd.MarkFlagRequired("out")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.New("error").Error("run failed", "error", err)
		os.Exit(1)
	}
}
