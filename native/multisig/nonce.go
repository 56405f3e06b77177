package multisig

// nonceState is the persistence surface for the replay tracker.
type nonceState interface {
	NoncePut(addr [20]byte, nonce uint64) error
	NonceGet(addr [20]byte) uint64
}

// NonceTracker enforces strictly increasing per-account nonces so a signed
// payload replayed verbatim is rejected. Accounts start at zero; the first
// accepted nonce is one.
type NonceTracker struct {
	state nonceState
}

// NewNonceTracker wraps the state backend in a replay tracker.
func NewNonceTracker(state nonceState) *NonceTracker {
	return &NonceTracker{state: state}
}

// Current returns the last accepted nonce for the account.
func (t *NonceTracker) Current(addr [20]byte) uint64 {
	if t == nil || t.state == nil {
		return 0
	}
	return t.state.NonceGet(addr)
}

// CheckAndUpdate accepts the nonce only when it exceeds the stored value,
// then records it. Gaps are permitted; going backwards or standing still is
// not.
func (t *NonceTracker) CheckAndUpdate(addr [20]byte, nonce uint64) error {
	if t == nil || t.state == nil {
		return errNilState
	}
	if nonce <= t.state.NonceGet(addr) {
		return ErrNonceTooLow
	}
	return t.state.NoncePut(addr, nonce)
}
