package dto

type IngestLeadWebhookCommand struct {
	DealerID  int64
	RawBody   []byte
	Signature string
}

type IngestLeadWebhookOutput struct {
	LeadID    string
	EventUUID string
}
