package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ropscan/ropscan-go/api"
	"github.com/ropscan/ropscan-go/mutation"
	"github.com/ropscan/ropscan-go/resource"
)

var appointmentsCmd = &cobra.Command{
	Use:   "appointments",
	Short: "Manage ROP scan appointments",
}

var appointmentsTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List today's appointments",
	RunE:  runAppointmentsToday,
}

var newAppointment api.NewAppointment

var appointmentsScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule a new ROP scan appointment",
	RunE:  runAppointmentsSchedule,
}

func init() {
	appointmentsScheduleCmd.Flags().StringVar(&newAppointment.PatientID, "patient", "", "Neonate identifier (required)")
	appointmentsScheduleCmd.Flags().StringVar(&newAppointment.DateTime, "datetime", "", "Appointment time, e.g. 2026-09-01T09:00:00 (required)")
	appointmentsScheduleCmd.Flags().StringVar(&newAppointment.Type, "type", "Initial Screening", "Appointment type")

	appointmentsCmd.AddCommand(appointmentsTodayCmd, appointmentsScheduleCmd)
	rootCmd.AddCommand(appointmentsCmd)
}

func runAppointmentsToday(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	store := resource.New(cmd.Context(), a.client, a.sink, resource.Config[[]api.Appointment]{
		Endpoint:  api.EndpointAppointmentsToday,
		AutoFetch: true,
	})
	if message := store.Err(); message != "" {
		return errors.New(message)
	}

	appointments := store.Value()
	if len(appointments) == 0 {
		a.logger.Printf("No appointments scheduled for today")
		return nil
	}
	for _, appointment := range appointments {
		a.logger.Printf("%-20s %-8s %-24s %-20s %s",
			appointment.DateTime, appointment.PatientID, appointment.PatientName, appointment.Type, appointment.Status)
	}
	return nil
}

func runAppointmentsSchedule(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	executor := mutation.New(a.client, a.sink)
	if _, err := executor.Post(cmd.Context(), api.EndpointAppointments, newAppointment); err != nil {
		return err
	}
	return nil
}
