package submitter

import "strings"

// retryAction is what classify decided to do before the next attempt.
type retryAction int

const (
	retryNone retryAction = iota
	retryRefreshNonce
	retryReconnect
	retryBackoff
)

// staleNoncePhrases and connClosedPhrases are substrings observed in node
// RPC error strings; matching is best-effort since the wire format carries
// no structured error code for these cases (spec §4.J "Error policy").
var staleNoncePhrases = []string{
	"invalid transaction nonce",
	"nonce too low",
	"transaction is outdated",
	"already imported",
}

var connClosedPhrases = []string{
	"connection closed",
	"use of closed network connection",
	"EOF",
	"broken pipe",
}

// classify decides what recovery step precedes the next retry attempt,
// given an error string observed from the provider or status stream.
func classify(msg string) retryAction {
	lower := strings.ToLower(msg)
	for _, p := range staleNoncePhrases {
		if strings.Contains(lower, strings.ToLower(p)) {
			return retryRefreshNonce
		}
	}
	for _, p := range connClosedPhrases {
		if strings.Contains(lower, strings.ToLower(p)) {
			return retryReconnect
		}
	}
	return retryBackoff
}
