package valueobjects

import apperrors "leadrelay/internal/shared_kernel/errors"

type RelayStage string

const (
	RelayStageFetchLead   RelayStage = "fetch_lead"
	RelayStageForwardLead RelayStage = "forward_lead"
)

func NewInitialRelayStage() RelayStage {
	return RelayStageFetchLead
}

func ParseRelayStage(raw string) (RelayStage, *apperrors.AppError) {
	switch raw {
	case string(RelayStageFetchLead):
		return RelayStageFetchLead, nil
	case string(RelayStageForwardLead):
		return RelayStageForwardLead, nil
	default:
		return "", apperrors.NewInternal(
			"relay_stage_invalid",
			"relay stage is invalid",
			map[string]any{"stage": raw},
		)
	}
}

func (s RelayStage) String() string {
	return string(s)
}
