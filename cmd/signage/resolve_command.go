package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"signage_server/config"
	"signage_server/internal/services"

	"github.com/spf13/cobra"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var deviceID string
	var at string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show which playlist a device would play at a given time",
		Long: "Resolve runs the same schedule selection as a device check-in, without recording anything.\n" +
			"--at accepts RFC3339 or a local time in the configured timezone; it defaults to now.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			now := config.GetCurrentTime()
			if strings.TrimSpace(at) != "" {
				now, err = config.ParseTimeInTimezone(strings.TrimSpace(at))
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
			}

			store, closeDB, err := ctx.openStore(false)
			if err != nil {
				return err
			}
			defer closeDB()
			assetStore, _, err := buildAssets(cfg)
			if err != nil {
				return err
			}

			device, err := store.Devices().GetByDeviceID(cmd.Context(), deviceID)
			if err != nil {
				return err
			}
			catalog := services.NewCatalogService(store, assetStore, ctx.logger)
			res, err := services.NewResolver(store, catalog).Resolve(cmd.Context(), device, now)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderResolution(device.DeviceID, now, res))
			if res.Playlist != nil && len(res.Playlist.Media) > 0 {
				fmt.Fprintln(out, renderPlaylistItems(res.Playlist))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&deviceID, "device", "", "Device ID (the device_id string, not the numeric id)")
	cmd.Flags().StringVar(&at, "at", "", "Point in time to resolve (default now)")
	_ = cmd.MarkFlagRequired("device")
	return cmd
}

func renderResolution(deviceID string, at time.Time, res *services.Resolution) string {
	rows := [][]string{
		{"Device", deviceID},
		{"At", config.FormatTimeInTimezone(at, time.RFC3339)},
		{"Status", res.Status},
	}
	if res.Schedule != nil {
		rows = append(rows,
			[]string{"Schedule", strconv.FormatUint(uint64(res.Schedule.ID), 10)},
			[]string{"Window", fmt.Sprintf("%s → %s",
				config.FormatTimeInTimezone(res.Schedule.StartTime, time.RFC3339),
				config.FormatTimeInTimezone(res.Schedule.EndTime, time.RFC3339))},
		)
	}
	if res.Playlist != nil {
		rows = append(rows, []string{"Playlist", fmt.Sprintf("%s (#%d)", res.Playlist.Name, res.Playlist.ID)})
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}

func renderPlaylistItems(playlist *services.PlaylistDetail) string {
	rows := make([][]string, 0, len(playlist.Media))
	for i, m := range playlist.Media {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.FormatUint(uint64(m.ID), 10),
			m.Title,
			string(m.MediaType),
			strconv.Itoa(m.Duration) + "s",
			m.FileURL,
		})
	}
	return renderTable(
		[]string{"#", "Media", "Title", "Type", "Duration", "URL"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	)
}
