package quorum

import "errors"

var (
	ErrLateBatch             = errors.New("batch already finalized")
	ErrInvalidTable          = errors.New("table identifier empty or unregistered")
	ErrNoData                = errors.New("row data is empty")
	ErrInvalidBatch          = errors.New("batch id is empty")
	ErrUnauthorizedSubmitter = errors.New("caller lacks permission for any enabled scope")
	ErrMaxSubmittersReached  = errors.New("max submitters reached for this batch and scope")
)
