package types

const (
	// ReceiptStatusFailed is the status code of a request if execution failed.
	ReceiptStatusFailed = uint64(0)
	// ReceiptStatusSuccessful is the status code of a request if execution succeeded.
	ReceiptStatusSuccessful = uint64(1)
)

// Receipt represents the result of a processed request
type Receipt struct {
	ReqHash Hash
	Seq     uint64
	Status  uint64
}

// Receipts is an array of Receipt
type Receipts []*Receipt

// NewReceipt creates a request receipt
func NewReceipt(reqHash Hash, seq, status uint64) *Receipt {
	return &Receipt{
		ReqHash: reqHash,
		Seq:     seq,
		Status:  status,
	}
}
