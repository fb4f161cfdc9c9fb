package domain

// Bundle status constants as reported by the block engine.
const (
	BundleStatusPending = "pending"
	BundleStatusLanded  = "landed"
	BundleStatusFailed  = "failed"
	BundleStatusUnknown = "unknown"
)

// BundleReceipt records a submitted MEV bundle.
type BundleReceipt struct {
	BundleID    string
	Status      string
	TipLamports int64
	SubmittedAt int64 // Unix timestamp in milliseconds
}
