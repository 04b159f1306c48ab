// Package jobs implements the batch operations exposed by the service: the
// conversion run over ingested documents, the hierarchy reformat over
// converted sheets, and the cleanup sweep over all working folders. Each job
// reads from and writes to a [storage.Store] and reports what it did.
package jobs
