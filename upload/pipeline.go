package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/docker/go-units"

	"github.com/ropscan/ropscan-go/api"
	"github.com/ropscan/ropscan-go/notification"
)

// Item is a validated, queued file. Immutable once admitted; removal and
// re-validation require re-selection.
type Item struct {
	Name      string
	SizeBytes int64

	file File
}

// Outcome is the result of one transfer attempt, produced at most once per
// queued item during a run.
type Outcome struct {
	Item          Item
	Succeeded     bool
	ServerMessage string
}

// Summary aggregates a finished or aborted run.
type Summary struct {
	Attempted int
	Succeeded int
}

// Refresher is the dependent resource refreshed after a run, typically the
// upload history store.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Pipeline validates, queues and uploads fundus images for a single patient.
// Transfers run strictly sequentially: each response gates the start of the
// next item, so backend load is bounded to one in-flight transfer and progress
// is a clean succeeded/total ratio.
type Pipeline struct {
	client  *api.Client
	sink    notification.Sink
	history Refresher
	logger  log.Logger

	mu        sync.Mutex
	queue     []Item
	patientID string
	progress  float64
	running   bool
}

// New creates a pipeline. history may be nil if no dependent store exists.
func New(client *api.Client, sink notification.Sink, history Refresher, logger log.Logger) *Pipeline {
	return &Pipeline{
		client:  client,
		sink:    sink,
		history: history,
		logger:  logger,
	}
}

// SetPatientID binds the patient identifier for the next run. The identifier
// is normalized to upper case, matching the server's record keys.
func (p *Pipeline) SetPatientID(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.patientID = strings.ToUpper(strings.TrimSpace(id))
}

// PatientID returns the currently bound patient identifier.
func (p *Pipeline) PatientID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.patientID
}

// Queue returns a copy of the queued items in selection order.
func (p *Pipeline) Queue() []Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	queue := make([]Item, len(p.queue))
	copy(queue, p.queue)
	return queue
}

// Progress returns the completed ratio of the current run, between 0 and 1.
func (p *Pipeline) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

// Running reports whether a run is in progress.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Select validates the files and appends the admitted ones to the queue in
// selection order. Every rejection is reported individually through the sink
// with its specific reason. Returns the number of admitted files.
func (p *Pipeline) Select(files ...File) int {
	admitted := 0
	for _, file := range files {
		if err := validateFile(file); err != nil {
			p.sink.Notify(notification.Event{
				Title:       "File Rejected",
				Description: err.Error(),
				Variant:     notification.VariantDestructive,
			})
			continue
		}
		p.mu.Lock()
		p.queue = append(p.queue, Item{Name: file.Name(), SizeBytes: file.Size(), file: file})
		p.mu.Unlock()
		admitted++
	}
	return admitted
}

// Remove dequeues the item at the given index. Not possible once a run has
// started.
func (p *Pipeline) Remove(index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errors.New("cannot remove items while an upload is running")
	}
	if index < 0 || index >= len(p.queue) {
		return fmt.Errorf("no queued item at index %d", index)
	}
	p.queue = append(p.queue[:index], p.queue[index+1:]...)
	return nil
}

// Upload transfers the queued items one at a time against the bound patient
// identifier. A server rejection of one item records its outcome and continues
// with the next; a transport failure abandons the entire remaining batch and is
// returned as the error. After completing or aborting, the queue and patient
// identifier are reset and the dependent history store is refreshed.
func (p *Pipeline) Upload(ctx context.Context) (Summary, []Outcome, error) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return Summary{}, nil, errors.New("an upload is already running")
	}
	patientID := p.patientID
	queue := make([]Item, len(p.queue))
	copy(queue, p.queue)

	if patientID == "" {
		p.mu.Unlock()
		p.sink.Notify(notification.Event{
			Title:       "Validation Error",
			Description: "Please provide a Patient ID before uploading.",
			Variant:     notification.VariantDestructive,
		})
		return Summary{}, nil, errors.New("patient ID is empty")
	}
	if len(queue) == 0 {
		p.mu.Unlock()
		p.sink.Notify(notification.Event{
			Title:       "Validation Error",
			Description: "No files selected for upload.",
			Variant:     notification.VariantDestructive,
		})
		return Summary{}, nil, errors.New("upload queue is empty")
	}

	p.running = true
	p.progress = 0
	p.mu.Unlock()

	total := len(queue)
	outcomes := make([]Outcome, 0, total)
	succeeded := 0
	var abortErr error

	for _, item := range queue {
		p.logger.Debugf("Uploading %s (%s) for patient %s", item.Name, units.BytesSize(float64(item.SizeBytes)), patientID)

		payload, err := p.transfer(ctx, patientID, item)
		if err != nil {
			var apiErr *api.APIError
			if errors.As(err, &apiErr) {
				outcomes = append(outcomes, Outcome{Item: item, ServerMessage: apiErr.Message})
				p.sink.Notify(notification.Event{
					Title:       "Upload Failed",
					Description: fmt.Sprintf("%s: %s", item.Name, apiErr.Message),
					Variant:     notification.VariantDestructive,
				})
				continue
			}

			// Transport failure: the connection is considered gone, so the
			// remaining items are abandoned instead of attempted one by one.
			outcomes = append(outcomes, Outcome{Item: item, ServerMessage: err.Error()})
			p.sink.Notify(notification.Event{
				Title:       "Connection Failed",
				Description: err.Error(),
				Variant:     notification.VariantDestructive,
			})
			abortErr = err
			break
		}

		var response api.UploadResponse
		if err := json.Unmarshal(payload, &response); err != nil {
			p.logger.Warnf("Unexpected upload response for %s: %s", item.Name, err)
		}
		outcomes = append(outcomes, Outcome{Item: item, Succeeded: true, ServerMessage: response.Message})
		succeeded++

		p.mu.Lock()
		p.progress = float64(succeeded) / float64(total)
		p.mu.Unlock()

		description := fmt.Sprintf("%s uploaded", item.Name)
		if response.AIResult.Status != "" {
			description = fmt.Sprintf("%s uploaded, AI analysis: %s", item.Name, response.AIResult.Status)
		}
		p.sink.Notify(notification.Event{
			Title:       "Upload Successful",
			Description: description,
			Variant:     notification.VariantDefault,
		})
	}

	summary := Summary{Attempted: len(outcomes), Succeeded: succeeded}
	variant := notification.VariantDefault
	if succeeded < total {
		variant = notification.VariantDestructive
	}
	p.sink.Notify(notification.Event{
		Title:       "Upload Complete",
		Description: fmt.Sprintf("%d of %d uploaded", succeeded, total),
		Variant:     variant,
	})

	p.mu.Lock()
	p.queue = nil
	p.patientID = ""
	p.running = false
	p.progress = 0
	p.mu.Unlock()

	if p.history != nil {
		p.history.Refresh(ctx)
	}

	return summary, outcomes, abortErr
}

func (p *Pipeline) transfer(ctx context.Context, patientID string, item Item) (json.RawMessage, error) {
	reader, err := item.file.Open()
	if err != nil {
		return nil, &api.ConnectionError{Err: fmt.Errorf("open %s: %w", item.Name, err)}
	}
	defer func() {
		if err := reader.Close(); err != nil {
			p.logger.Printf(err.Error())
		}
	}()

	fields := map[string]string{"patientId": patientID}
	return p.client.Upload(ctx, api.EndpointImageUpload, fields, "file", item.Name, reader)
}
