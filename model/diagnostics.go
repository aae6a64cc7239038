package model

// Diagnostics records all anomalies observed during a rebuild. Nothing
// in the pipeline is fatal; every skipped record, alias collision and
// unparseable date ends up here instead of aborting the pass.
type Diagnostics struct {
	SourcesProcessed  int `json:"sources_processed"`
	SourcesFailed     int `json:"sources_failed"`
	RecordsMerged     int `json:"records_merged"`
	RecordsSkipped    int `json:"records_skipped"`
	AliasesRegistered int `json:"aliases_registered"`
	AliasesResolved   int `json:"aliases_resolved"`
	AliasCollisions   int `json:"alias_collisions"`
	IndexCollisions   int `json:"index_collisions"`
	UnparsedDates     int `json:"unparsed_dates"`
}
