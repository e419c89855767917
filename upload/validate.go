package upload

import (
	"fmt"
	"strings"

	"github.com/docker/go-units"
)

// MaxFileSizeBytes is the admission limit for a single file.
const MaxFileSizeBytes = 10 * units.MiB

var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// validateFile decides whether a file may be queued. Admitted files must be a
// JPEG or PNG by declared media type, or a DICOM file by `.dcm` extension
// (case-insensitive), and must not exceed MaxFileSizeBytes.
func validateFile(file File) error {
	if !allowedMediaTypes[file.MediaType()] && !strings.HasSuffix(strings.ToLower(file.Name()), ".dcm") {
		return fmt.Errorf("%s is not a supported file type (JPEG, PNG or DICOM .dcm)", file.Name())
	}
	if file.Size() > MaxFileSizeBytes {
		return fmt.Errorf("%s is too large: %s exceeds the %s limit",
			file.Name(),
			units.BytesSize(float64(file.Size())),
			units.BytesSize(float64(MaxFileSizeBytes)))
	}
	return nil
}
