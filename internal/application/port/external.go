package port

import (
	"context"
	"time"
)

// CredentialVerifier validates an approver's signing secret. How the secret
// is stored is the verifier's concern; the engine only sees the boolean.
type CredentialVerifier interface {
	Verify(ctx context.Context, approverID, credential string) (bool, error)
}

// Clock abstracts time for testability of the time-based risk factors and the
// "signed today" window.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
