package docai

import (
	"context"
	"errors"

	"github.com/mvarga/claimsdesk/internal/infrastructure/resilience"
)

func classifyGoogleError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{RecordFailure: false}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}
