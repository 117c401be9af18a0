package staff

import "context"

// Submissions per bulk call; enforced before any processing starts.
const maxBulkSubmissions = 100

// BulkCreate processes each submission through the full single-creation path
// independently. Atomicity is per submission only; one failure never rolls
// back another's creation. The aggregate result is always returned, even
// when stop_on_error truncates the batch.
func (s *Service) BulkCreate(ctx context.Context, req BulkRequest, actor string) (*BulkResult, error) {
	if len(req.Submissions) == 0 {
		return nil, &ValidationError{Reasons: []string{"at least one submission is required"}}
	}
	if len(req.Submissions) > maxBulkSubmissions {
		return nil, &ValidationError{Reasons: []string{"bulk creation is limited to 100 submissions per call"}}
	}

	result := &BulkResult{
		Created: []CreateResult{},
		Failed:  []BulkFailure{},
	}

	// Submissions rejected by the pre-validation pass are recorded once and
	// skipped by the creation pass below.
	prefailed := make(map[int]bool)
	if req.ValidateAllFirst {
		for idx, sub := range req.Submissions {
			if err := s.validator.ValidateCreate(ctx, normalize(sub)); err != nil {
				result.Failed = append(result.Failed, bulkFailure(idx, sub, err))
				prefailed[idx] = true
				if req.StopOnError {
					return finishBulk(result), nil
				}
			}
		}
	}

	for idx, sub := range req.Submissions {
		if prefailed[idx] {
			continue
		}
		created, err := s.CreateEmployee(ctx, sub, actor)
		if err != nil {
			result.Failed = append(result.Failed, bulkFailure(idx, sub, err))
			if req.StopOnError {
				break
			}
			continue
		}
		result.Created = append(result.Created, *created)
	}

	return finishBulk(result), nil
}

func bulkFailure(idx int, sub Submission, err error) BulkFailure {
	return BulkFailure{
		Index:        idx,
		EmployeeCode: sub.EmployeeCode,
		Email:        sub.Email,
		Error:        err.Error(),
	}
}

func finishBulk(result *BulkResult) *BulkResult {
	result.TotalCreated = len(result.Created)
	result.TotalFailed = len(result.Failed)
	result.TotalProcessed = result.TotalCreated + result.TotalFailed
	return result
}
