package engine

import "context"

// ChainStatus is the result of verifying a tenant's append-only hash
// chain.
type ChainStatus struct {
	Valid      bool
	FirstBreak string // empty when Valid
}

// VerifyChain recomputes and checks a tenant's hash chain end to
// end.
func (e *Engine) VerifyChain(ctx context.Context, tenantID string) (ChainStatus, error) {
	valid, firstBreak, err := e.store.VerifyChain(ctx, tenantID)
	if err != nil {
		return ChainStatus{}, err
	}
	return ChainStatus{Valid: valid, FirstBreak: firstBreak}, nil
}
