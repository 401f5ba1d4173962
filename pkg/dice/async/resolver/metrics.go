package async_resolver

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"

	"github.com/code-payments/code-dice/pkg/metrics"
	"github.com/code-payments/code-dice/pkg/solana/dice"
)

const (
	submissionEventName          = "DiceResolverSubmission"
	submissionDurationMetricName = "DiceResolver/submission_duration_ms"
)

func recordSubmissionEvent(ctx context.Context, bet ed25519.PublicKey, attempts uint, duration time.Duration, err error) {
	metrics.RecordDuration(ctx, submissionDurationMetricName, duration)

	kvPairs := map[string]interface{}{
		"bet":      base58.Encode(bet),
		"attempts": attempts,
		"success":  err == nil,
	}

	if code, ok := dice.GetErrorCode(err); ok {
		kvPairs["error_code"] = code
	} else if err != nil {
		kvPairs["error"] = err.Error()
	}

	metrics.RecordEvent(ctx, submissionEventName, kvPairs)
}
