package download

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/retryhttp"
	"github.com/melbahja/got"

	"github.com/ropscan/ropscan-go/api"
)

// Params ...
type Params struct {
	APIBaseURL   string
	Filename     string
	DownloadPath string
}

// Image downloads a stored fundus image by its server-side filename to
// params.DownloadPath.
func Image(ctx context.Context, params Params, logger log.Logger) error {
	if params.APIBaseURL == "" {
		return fmt.Errorf("API base URL is empty")
	}
	if params.Filename == "" {
		return fmt.Errorf("filename is empty")
	}

	httpClient := retryhttp.NewClient(logger)
	httpClient.RetryMax = 0

	imageURL := fmt.Sprintf("%s%s/%s", params.APIBaseURL, api.EndpointImageFile, url.PathEscape(params.Filename))
	logger.Debugf("Downloading %s", imageURL)

	downloader := got.New()
	downloader.Client = httpClient.StandardClient()

	if err := downloader.Do(got.NewDownload(ctx, imageURL, params.DownloadPath)); err != nil {
		return fmt.Errorf("failed to download image: %w", err)
	}
	return nil
}
