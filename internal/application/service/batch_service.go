package service

import (
	"context"
)

// BatchService applies the signing lifecycle across a set of tasks with
// best-effort semantics: items are processed strictly sequentially, one
// item's failure never aborts the rest, and the per-process finalize check
// runs once per distinct process after the loop instead of once per task.
//
// Sequential on purpose: each sign's cascade reads shared state whose
// correctness depends on earlier items having committed, and error
// attribution must map 1:1 to input ids.
type BatchService interface {
	SignMany(ctx context.Context, taskIDs []string, approverID, credential string) BatchResult
}

type batchServiceImpl struct {
	signing    SigningService
	propagator PropagationService
	logger     Logger
}

// NewBatchService creates a new BatchService
func NewBatchService(signing SigningService, propagator PropagationService, logger Logger) BatchService {
	return &batchServiceImpl{
		signing:    signing,
		propagator: propagator,
		logger:     logger,
	}
}

// SignMany signs the given tasks in input order and reports per-item counts.
func (s *batchServiceImpl) SignMany(ctx context.Context, taskIDs []string, approverID, credential string) BatchResult {
	var result BatchResult

	// Distinct processes touched, in first-seen order, each with the kind
	// of its last successfully signed task. Finalizing once per process
	// with the last kind matches signing the items one by one.
	var processOrder []string
	processKinds := make(map[string]string)

	for _, taskID := range taskIDs {
		res := s.signing.SignDeferred(ctx, taskID, approverID, credential)
		if !res.OK {
			result.FailureCount++
			result.Failures = append(result.Failures, BatchFailure{
				TaskID:    taskID,
				ErrorKind: res.ErrorKind,
				Message:   res.Message,
			})
			continue
		}

		result.SuccessCount++
		if _, seen := processKinds[res.ProcessID]; !seen {
			processOrder = append(processOrder, res.ProcessID)
		}
		processKinds[res.ProcessID] = res.DocumentKind
	}

	for _, processID := range processOrder {
		if err := s.propagator.FinalizeProcess(ctx, processID, processKinds[processID]); err != nil {
			// The tasks are signed; a failed finalize is retried by the
			// next idempotent cascade, not surfaced as item failures.
			s.logger.Warn("Batch finalize incomplete",
				"error", err,
				"process_id", processID)
		}
	}

	s.logger.Info("Batch signing finished",
		"requested", len(taskIDs),
		"signed", result.SuccessCount,
		"failed", result.FailureCount,
		"processes", len(processOrder))

	return result
}
