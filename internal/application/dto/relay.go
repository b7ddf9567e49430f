package dto

import "time"

type ProcessRelayJobsCommand struct {
	Now                time.Time
	BatchSize          int
	WorkerID           string
	LeaseDuration      time.Duration
	FetchBackoffBase   time.Duration
	ForwardBackoffBase time.Duration
	RetryBudget        int
}

type ProcessRelayJobsOutput struct {
	Claimed   int
	Advanced  int
	Forwarded int
	Retried   int
	Abandoned int
	Skipped   int
	Errors    int
	LatencyMS int64
}

type ClaimedRelayJob struct {
	ID          int64
	DealerID    int64
	LeadID      string
	Stage       string
	Attempts    int
	LeadPayload []byte
}

type FetchLeadInput struct {
	LeadID   string
	DealerID int64
}

type FetchLeadOutput struct {
	Payload []byte
}

type ForwardLeadInput struct {
	LeadID   string
	DealerID int64
	Payload  []byte
}

type ForwardLeadOutput struct {
	StatusCode int
}
