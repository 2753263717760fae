package main

import (
	"fmt"
	"strings"
	"time"

	"signage_server/config"
	"signage_server/internal/models"

	"github.com/spf13/cobra"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var deviceID string
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print a device's check-in log, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := ctx.openStore(false)
			if err != nil {
				return err
			}
			defer closeDB()

			device, err := store.Devices().GetByDeviceID(cmd.Context(), deviceID)
			if err != nil {
				return err
			}
			logs, err := store.DeviceLogs().ListByDevice(cmd.Context(), device.ID, limit)
			if err != nil {
				return err
			}
			if len(logs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No log entries for %s\n", device.DeviceID)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderLogs(logs))
			return nil
		},
	}
	cmd.Flags().StringVar(&deviceID, "device", "", "Device ID (the device_id string, not the numeric id)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries (0 for all)")
	_ = cmd.MarkFlagRequired("device")
	return cmd
}

func renderLogs(logs []models.DeviceLog) string {
	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, []string{
			config.FormatTimeInTimezone(l.Timestamp, time.RFC3339),
			l.Action,
			formatDetails(l.Details),
		})
	}
	return renderTable([]string{"Timestamp", "Action", "Details"}, rows, nil)
}

// formatDetails renders details as sorted key=value pairs
func formatDetails(details models.LogDetails) string {
	parts := make([]string, 0, len(details))
	for _, k := range details.Keys() {
		parts = append(parts, k+"="+details[k].Text())
	}
	return strings.Join(parts, " ")
}
