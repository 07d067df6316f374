package guardrails

import (
	"fmt"
	"time"
)

// EmitRetry appends the guardrail message for retry attempt n of maxRetries
// (spec.md §4.5/§8): attempts 1..maxRetries emit a retry-with-same-model
// message; attempt maxRetries+1 emits a single fallback-to-secondary-model
// message instead. fallbackModel is only referenced by the fallback
// message. Guardrail order is emission order: the message for attempt n
// always appears before the message for attempt n+1 (spec.md §5).
func (m *Manager) EmitRetry(phase Phase, attempt, maxRetries int, fallbackModel string) Message {
	var msg Message
	if attempt <= maxRetries {
		msg = Message{
			Type:      MessageTypeRetry,
			Phase:     phase,
			Body:      fmt.Sprintf("Retry attempt %d of %d using the same model.", attempt, maxRetries),
			Timestamp: time.Now(),
			Metadata:  map[string]any{"attempt": attempt, "max_retries": maxRetries},
		}
	} else {
		msg = Message{
			Type:      MessageTypeRetry,
			Phase:     phase,
			Body:      fmt.Sprintf("Retries exhausted after %d attempts; switching to fallback model %s.", maxRetries, fallbackModel),
			Timestamp: time.Now(),
			Metadata:  map[string]any{"attempt": attempt, "max_retries": maxRetries, "fallback_model": fallbackModel},
		}
	}
	m.appendMessage(msg)
	return msg
}
