// Package decision implements the Decision Record Sink & selection
// endpoint: recording a human's chosen recovery solution to
// one or more durable object-store buckets, independently attempted so
// a partial failure yields PARTIAL_SUCCESS with a per-bucket status map.
package decision

import (
	"context"
	"strconv"
	"time"

	"github.com/airline-ops/recovery-orchestrator/core"
	"github.com/airline-ops/recovery-orchestrator/model"
)

// OutputSource loads the stored ArbitratorOutput + originating
// AnalyzerResponses for a disruption id, as recorded by the orchestrator
// at Phase 3 completion.
type OutputSource interface {
	Load(ctx context.Context, disruptionID string) (*model.ArbitratorOutput, []model.AnalyzerResponse, error)
}

// BucketWriter writes one object to one durable object-store bucket.
type BucketWriter interface {
	Name() string
	Put(ctx context.Context, key string, data []byte, tags map[string]string) error
}

// Status is the outcome of one record_selection call.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusPartialSuccess Status = "partial_success"
)

// Result is returned by RecordSelection.
type Result struct {
	Status      Status            `json:"status"`
	PerBucket   map[string]string `json:"per_bucket_status"`
	Record      *model.DecisionRecord `json:"-"`
}

// Sink records human decisions across every configured bucket.
type Sink struct {
	source  OutputSource
	buckets []BucketWriter
	logger  core.Logger
}

// New builds a Sink writing to every bucket in buckets, in the order
// given; each is attempted independently.
func New(source OutputSource, buckets []BucketWriter, logger core.Logger) *Sink {
	if logger == nil {
		logger = core.NoopLogger{}
	}
	return &Sink{source: source, buckets: buckets, logger: logger}
}

// RecordSelection implements record_selection(disruption_id,
// selected_solution_id, rationale?).
func (s *Sink) RecordSelection(ctx context.Context, disruptionID string, selectedSolutionID int, rationale string) (*Result, error) {
	output, responses, err := s.source.Load(ctx, disruptionID)
	if err != nil {
		return nil, core.NewError("decision.RecordSelection", core.KindInternal, "failed to load arbitrator output", err)
	}
	if output == nil {
		return nil, core.NewError("decision.RecordSelection", core.KindNotFound, "no arbitrator output found for disruption", core.ErrNotFound)
	}

	var selected *model.RecoverySolution
	for i := range output.SolutionOptions {
		if output.SolutionOptions[i].SolutionID == selectedSolutionID {
			selected = &output.SolutionOptions[i]
			break
		}
	}
	if selected == nil {
		return nil, core.NewError("decision.RecordSelection", core.KindInvalidRequest, "selected_solution_id not among solution_options", core.ErrInvalidRequest)
	}

	record := model.NewDecisionRecord(
		disruptionID,
		time.Now().UTC().Format(time.RFC3339),
		responses,
		output.SolutionOptions,
		output.RecommendedSolutionID,
		selectedSolutionID,
		rationale,
	)

	key, err := record.ObjectStoreKey()
	if err != nil {
		return nil, core.NewError("decision.RecordSelection", core.KindInternal, "failed to compute object store key", err)
	}

	data, err := marshalRecord(record)
	if err != nil {
		return nil, core.NewError("decision.RecordSelection", core.KindInternal, "failed to serialize decision record", err)
	}

	tags := map[string]string{
		"disruption_type":  record.DisruptionType,
		"flight_number":    record.FlightNumber,
		"selected_solution": strconv.Itoa(record.SelectedSolutionID),
		"human_override":   boolString(record.HumanOverride),
	}

	perBucket := make(map[string]string, len(s.buckets))
	anyFailed := false
	for _, b := range s.buckets {
		if err := b.Put(ctx, key, data, tags); err != nil {
			s.logger.Error("decision record write failed", map[string]interface{}{
				"disruption_id": disruptionID, "bucket": b.Name(), "error": err.Error(),
			})
			perBucket[b.Name()] = "failed"
			anyFailed = true
			continue
		}
		perBucket[b.Name()] = "ok"
	}

	status := StatusSuccess
	if anyFailed {
		status = StatusPartialSuccess
	}

	return &Result{Status: status, PerBucket: perBucket, Record: record}, nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
