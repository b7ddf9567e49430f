package valueobjects

import apperrors "leadrelay/internal/shared_kernel/errors"

type RelayJobStatus string

const (
	RelayJobStatusPending   RelayJobStatus = "pending"
	RelayJobStatusDone      RelayJobStatus = "done"
	RelayJobStatusAbandoned RelayJobStatus = "abandoned"
)

func ParseRelayJobStatus(raw string) (RelayJobStatus, *apperrors.AppError) {
	switch raw {
	case string(RelayJobStatusPending):
		return RelayJobStatusPending, nil
	case string(RelayJobStatusDone):
		return RelayJobStatusDone, nil
	case string(RelayJobStatusAbandoned):
		return RelayJobStatusAbandoned, nil
	default:
		return "", apperrors.NewInternal(
			"relay_job_status_invalid",
			"relay job status is invalid",
			map[string]any{"status": raw},
		)
	}
}

func (s RelayJobStatus) String() string {
	return string(s)
}
