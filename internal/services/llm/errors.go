package llm

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrorKind buckets provider failures so callers can decide whether to
// retry, back off, or give up.
type ErrorKind string

const (
	ErrorKindOverloaded  ErrorKind = "overloaded"
	ErrorKindRateLimited ErrorKind = "rate_limited"
	ErrorKindNetwork     ErrorKind = "network"
	ErrorKindMalformed   ErrorKind = "malformed"
	ErrorKindOther       ErrorKind = "other"
)

// ClassifyError inspects a provider error and assigns an ErrorKind.
// Providers surface status codes and reasons in the error string, so the
// classification is substring based.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ErrorKindOther
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorKindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "503"),
		strings.Contains(msg, "unavailable"),
		strings.Contains(msg, "overloaded"):
		return ErrorKindOverloaded
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "resource_exhausted"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "rate limit"):
		return ErrorKindRateLimited
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "eof"):
		return ErrorKindNetwork
	case strings.Contains(msg, "invalid json"),
		strings.Contains(msg, "unmarshal"),
		strings.Contains(msg, "malformed"):
		return ErrorKindMalformed
	}

	return ErrorKindOther
}

// IsRetryable reports whether a failure of this kind may succeed on a later
// attempt. Network errors surface to the caller, and malformed responses are
// repaired downstream, not retried here.
func (k ErrorKind) IsRetryable() bool {
	return k == ErrorKindOverloaded || k == ErrorKindRateLimited
}

// retryDelayRegex matches "Please retry in Xs" or "retryDelay:Xs" patterns
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay parses the provider-suggested retry delay from an error
// message. Returns 0 when no delay is present.
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}

	matches := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0
	}

	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return 0
	}

	return time.Duration(seconds * float64(time.Second))
}
