package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/picogrid/tank-arena/pkg/export"
	"github.com/picogrid/tank-arena/pkg/logger"
	"github.com/picogrid/tank-arena/pkg/utils"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download and save debug data from a running arena",
	Long: `Fetch every tank's debug log from a running server, print a summary
of the event types and write one JSON file per tank plus a combined file.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("server", "", "arena server URL (default http://localhost:5000)")
	exportCmd.Flags().String("dir", "", "output directory (default debug_exports)")
	exportCmd.Flags().BoolP("yes", "y", false, "write files without asking")
	exportCmd.Flags().Duration("timeout", 10*time.Second, "request timeout")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(changedOverrides(cmd, map[string]string{
		"server": "server_url",
		"dir":    "export_dir",
	}))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	logger.Progressf("Fetching debug data from %s...", cfg.Export.ServerURL)
	data, err := export.Fetch(ctx, &http.Client{Timeout: timeout}, cfg.Export.ServerURL)
	if err != nil {
		return fmt.Errorf("failed to fetch debug data: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("No tanks registered, nothing to export")
		return nil
	}

	export.Print(os.Stdout, export.Analyze(data))

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		ok, err := utils.Confirm(fmt.Sprintf("Write %d tank files to %s?", len(data), cfg.Export.Dir), true)
		if err != nil {
			return err
		}
		if !ok {
			logger.Info("Export cancelled")
			return nil
		}
	}

	result, err := export.Write(cfg.Export.Dir, data, time.Now())
	if err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	for _, name := range sortedKeys(result.TankFiles) {
		logger.LogKeyValue(name, result.TankFiles[name])
	}
	logger.Successf("%s Combined export written to %s", logger.IconFile, result.CombinedFile)
	return nil
}
