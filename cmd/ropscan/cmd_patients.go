package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ropscan/ropscan-go/api"
	"github.com/ropscan/ropscan-go/mutation"
	"github.com/ropscan/ropscan-go/resource"
)

var patientsCmd = &cobra.Command{
	Use:   "patients",
	Short: "Manage patient records",
}

var patientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all patients, most recent first",
	RunE:  runPatientsList,
}

var newPatient api.NewPatient

var patientsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new patient record",
	RunE:  runPatientsAdd,
}

func init() {
	patientsAddCmd.Flags().StringVar(&newPatient.Name, "name", "", "Patient name (required)")
	patientsAddCmd.Flags().StringVar(&newPatient.NeonateID, "neonate-id", "", "Neonate identifier, e.g. N001 (required)")
	patientsAddCmd.Flags().StringVar(&newPatient.BirthDate, "birth-date", "", "Birth date, YYYY-MM-DD (required)")
	patientsAddCmd.Flags().StringVar(&newPatient.GestationalAge, "gestational-age", "", "Gestational age in weeks")
	patientsAddCmd.Flags().StringVar(&newPatient.Weight, "weight", "", "Birth weight in kg")
	patientsAddCmd.Flags().StringVar(&newPatient.ParentName, "parent-name", "", "Parent name (required)")
	patientsAddCmd.Flags().StringVar(&newPatient.ParentPhone, "parent-phone", "", "Parent phone number")
	patientsAddCmd.Flags().StringVar(&newPatient.ParentEmail, "parent-email", "", "Parent email address")

	patientsCmd.AddCommand(patientsListCmd, patientsAddCmd)
	rootCmd.AddCommand(patientsCmd)
}

func runPatientsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	store := resource.New(cmd.Context(), a.client, a.sink, resource.Config[[]api.Patient]{
		Endpoint:  api.EndpointPatients,
		AutoFetch: true,
	})
	if message := store.Err(); message != "" {
		return errors.New(message)
	}

	patients := store.Value()
	if len(patients) == 0 {
		a.logger.Printf("No patients found")
		return nil
	}
	for _, patient := range patients {
		a.logger.Printf("%-8s %-24s born %-12s parent %s", patient.NeonateID, patient.Name, patient.BirthDate, patient.ParentName)
	}
	return nil
}

func runPatientsAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	executor := mutation.New(a.client, a.sink)
	if _, err := executor.Post(cmd.Context(), api.EndpointPatients, newPatient); err != nil {
		return err
	}
	return nil
}
