package analysis

import (
	"context"
	"strings"
)

// PaymentVerifier confirms that a payment id entitles the caller to a
// premium report.
type PaymentVerifier interface {
	Verify(ctx context.Context, paymentID string) (bool, error)
}

// StaticVerifier accepts a fixed set of payment ids.
type StaticVerifier struct {
	ids map[string]struct{}
}

// NewStaticVerifier creates a verifier that accepts exactly ids. Blank ids
// are ignored.
func NewStaticVerifier(ids ...string) *StaticVerifier {
	v := &StaticVerifier{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			v.ids[id] = struct{}{}
		}
	}
	return v
}

// Verify reports whether paymentID is on the allow-list.
func (v *StaticVerifier) Verify(ctx context.Context, paymentID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := v.ids[strings.TrimSpace(paymentID)]
	return ok, nil
}

// BypassVerifier accepts every request. It serves free and test deployments
// where premium output is not gated.
type BypassVerifier struct{}

// Verify always succeeds.
func (BypassVerifier) Verify(context.Context, string) (bool, error) {
	return true, nil
}
