package model

// BatchStatusSuccess marks a batch item that completed, including the
// "nothing to delete" case.
const BatchStatusSuccess = "success"

// BatchItemResult is one successful item outcome inside a batch call.
type BatchItemResult struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Record  Record `json:"record,omitempty"`
}

// BatchItemError is one failed item outcome; it always carries the offending
// id and a stable machine-readable code.
type BatchItemError struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchResult is the ordered outcome of a whole batch call. Total equals the
// input length; Results and Errors together cover every input item in input
// order. A batch with zero successes is still a successful call at the
// transport boundary.
type BatchResult struct {
	Results []BatchItemResult `json:"results"`
	Errors  []BatchItemError  `json:"errors"`
	Total   int               `json:"total"`
}

// NewBatchResult allocates a result for a batch of n items.
func NewBatchResult(n int) *BatchResult {
	return &BatchResult{
		Results: make([]BatchItemResult, 0, n),
		Errors:  make([]BatchItemError, 0),
		Total:   n,
	}
}

// BatchUpdate is one item of a batch update call: the target record id and
// the fields to shallow-merge at the top level.
type BatchUpdate struct {
	ID    string                 `json:"id"`
	Patch map[string]interface{} `json:"patch"`
}
