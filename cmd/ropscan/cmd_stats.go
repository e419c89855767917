package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ropscan/ropscan-go/api"
	"github.com/ropscan/ropscan-go/resource"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the dashboard metrics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	store := resource.New(cmd.Context(), a.client, a.sink, resource.Config[api.Stats]{
		Endpoint:  api.EndpointStats,
		AutoFetch: true,
	})
	if message := store.Err(); message != "" {
		return errors.New(message)
	}

	stats := store.Value()
	a.logger.Printf("Total patients:        %d", stats.TotalPatients)
	a.logger.Printf("Appointments today:    %d", stats.AppointmentsToday)
	a.logger.Printf("Pending review:        %d", stats.PendingReview)
	a.logger.Printf("Total reviewed:        %d", stats.TotalReviewed)
	a.logger.Printf("Images uploaded today: %d", stats.ImagesUploadedToday)
	a.logger.Printf("Total uploads:         %d", stats.TotalUploads)
	a.logger.Printf("Pending processing:    %d", stats.PendingProcessing)
	return nil
}
