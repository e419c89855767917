package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/ropscan/ropscan-go/api"
	"github.com/ropscan/ropscan-go/download"
	"github.com/ropscan/ropscan-go/resource"
	"github.com/ropscan/ropscan-go/upload"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent image uploads",
	RunE:  runHistory,
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Show high-risk images awaiting doctor review",
	RunE:  runReview,
}

var uploadPatientID string

var uploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Upload fundus images for a patient",
	Long: `Upload one or more fundus images for AI analysis.

File arguments may contain glob patterns (including ** for recursion), e.g.:
  ropscan upload --patient N001 "scans/**/*.jpg"

Accepted files are JPEG, PNG or DICOM (.dcm) up to 10 MiB each.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

var imageOutputPath string

var imageCmd = &cobra.Command{
	Use:   "image [filename]",
	Short: "Download a stored fundus image",
	Args:  cobra.ExactArgs(1),
	RunE:  runImage,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadPatientID, "patient", "", "Neonate identifier the images belong to (required)")
	imageCmd.Flags().StringVarP(&imageOutputPath, "output", "o", "", "Destination path (defaults to the filename in the current directory)")

	rootCmd.AddCommand(historyCmd, reviewCmd, uploadCmd, imageCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	return printImageRecords(cmd, api.EndpointImageHistory, "No uploads yet")
}

func runReview(cmd *cobra.Command, args []string) error {
	return printImageRecords(cmd, api.EndpointImageReview, "No images awaiting review")
}

func printImageRecords(cmd *cobra.Command, endpoint string, emptyMessage string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	store := resource.New(cmd.Context(), a.client, a.sink, resource.Config[[]api.ImageRecord]{
		Endpoint:  endpoint,
		AutoFetch: true,
	})
	if message := store.Err(); message != "" {
		return errors.New(message)
	}

	records := store.Value()
	if len(records) == 0 {
		a.logger.Printf(emptyMessage)
		return nil
	}
	for _, record := range records {
		a.logger.Printf("%-20s %-8s %-32s %-12s %s (%.0f%%)",
			record.UploadTime, record.PatientID, record.Filename, record.Status,
			record.AIResult.Prediction, record.AIResult.Probability*100)
	}
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	history := resource.New(cmd.Context(), a.client, a.sink, resource.Config[[]api.ImageRecord]{
		Endpoint: api.EndpointImageHistory,
	})
	pipeline := upload.New(a.client, a.sink, history, a.logger)
	pipeline.SetPatientID(uploadPatientID)

	var files []upload.File
	for _, path := range expandPaths(args, a.logger) {
		file, err := upload.NewLocalFile(path)
		if err != nil {
			a.logger.Warnf("Skipping %s: %s", path, err)
			continue
		}
		files = append(files, file)
	}

	if admitted := pipeline.Select(files...); admitted == 0 {
		return fmt.Errorf("none of the selected files were admitted for upload")
	}

	summary, _, err := pipeline.Upload(cmd.Context())
	if err != nil {
		return err
	}
	if summary.Succeeded < summary.Attempted {
		return fmt.Errorf("%d of %d attempted uploads failed", summary.Attempted-summary.Succeeded, summary.Attempted)
	}
	return nil
}

func runImage(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	destination := imageOutputPath
	if destination == "" {
		destination = filepath.Base(args[0])
	}

	params := download.Params{
		APIBaseURL:   a.cfg.APIBaseURL,
		Filename:     args[0],
		DownloadPath: destination,
	}
	if err := download.Image(cmd.Context(), params, a.logger); err != nil {
		return err
	}
	a.logger.Donef("Saved %s", destination)
	return nil
}

// expandPaths resolves glob patterns in the file arguments. Plain paths are
// passed through untouched.
func expandPaths(patterns []string, logger log.Logger) []string {
	var expanded []string
	for _, pattern := range patterns {
		if !strings.Contains(pattern, "*") {
			expanded = append(expanded, pattern)
			continue
		}

		base, glob := doublestar.SplitPattern(pattern)
		matches, err := doublestar.Glob(os.DirFS(base), glob, doublestar.WithNoFollow())
		if err != nil {
			logger.Warnf("Error in path pattern '%s': %s", pattern, err)
			continue
		}
		if matches == nil {
			logger.Warnf("No match for path pattern: %s", pattern)
			continue
		}
		for _, match := range matches {
			expanded = append(expanded, filepath.Join(base, match))
		}
	}
	return expanded
}
