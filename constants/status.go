package constants

// StageStatus is the canonical outcome for one pipeline stage.
type StageStatus string

// Stable values (these exact strings appear in responses and logs).
const (
	StageOK       StageStatus = "OK"       // stage completed normally
	StageDegraded StageStatus = "DEGRADED" // stage failed partway; best-effort output used
	StageFailed   StageStatus = "FAILED"   // stage produced nothing usable
	StageSkipped  StageStatus = "SKIPPED"  // stage not applicable for this input
)
