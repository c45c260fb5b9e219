package ports

// AuditSink receives exactly one record per terminal conversion state.
type AuditSink interface {
	Success(operation, actor string, detail map[string]any)
	Failure(operation, actor string, err error, detail map[string]any)
}
