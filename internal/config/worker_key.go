package config

type WorkerKeyStruct struct {
	ProctorEventsQueue   string
	SubmissionAuditQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ProctorEventsQueue:   "proctor_events_queue",
	SubmissionAuditQueue: "submission_audit_queue",
}
