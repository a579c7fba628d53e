package storage

// WorkflowStore is the surface used by the group vault workflows, the reconciler
// and the intent replay lambda.
type WorkflowStore interface {
	GroupVaultStore
	IntentStore
}

// ApiStore defines the complete set of operations needed by the HTTP API.
// It composes other interfaces to provide a clear boundary for the API's data access.
type ApiStore interface {
	WorkflowStore
	ActivityStore
	ProfileStore
}
