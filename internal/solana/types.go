package solana

// AccountInfo is the raw getAccountInfo result.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       string // base64-encoded
	Encoding   string
	Executable bool
	RentEpoch  uint64
}
