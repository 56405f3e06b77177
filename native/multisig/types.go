package multisig

// Config is the threshold signer set. Nonce increments on every executed
// operation so an approved payload can never be replayed.
type Config struct {
	Signers   [][20]byte
	Threshold uint32
	Nonce     uint64
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := &Config{Threshold: c.Threshold, Nonce: c.Nonce}
	clone.Signers = make([][20]byte, len(c.Signers))
	copy(clone.Signers, c.Signers)
	return clone
}

// IsSigner reports whether the address belongs to the signer set.
func (c *Config) IsSigner(addr [20]byte) bool {
	if c == nil {
		return false
	}
	for _, signer := range c.Signers {
		if signer == addr {
			return true
		}
	}
	return false
}

// Validate checks the signer-set invariants: at least one signer, no zero or
// duplicate addresses, and a threshold within 1..len(signers).
func (c *Config) Validate() error {
	if c == nil || len(c.Signers) == 0 {
		return ErrInvalidConfig
	}
	seen := make(map[[20]byte]struct{}, len(c.Signers))
	for _, signer := range c.Signers {
		if signer == ([20]byte{}) {
			return ErrInvalidConfig
		}
		if _, dup := seen[signer]; dup {
			return ErrInvalidConfig
		}
		seen[signer] = struct{}{}
	}
	if c.Threshold == 0 || uint64(c.Threshold) > uint64(len(c.Signers)) {
		return ErrInvalidConfig
	}
	return nil
}

// Proposal is a pending operation awaiting threshold approval. The operation
// hash is opaque to the engine; callers derive it from the payload they intend
// to execute.
type Proposal struct {
	ID        [32]byte
	Operation [32]byte
	Proposer  [20]byte
	Approvals [][20]byte
	CreatedAt int64
	Executed  bool
}

// Clone returns a deep copy of the proposal.
func (p *Proposal) Clone() *Proposal {
	if p == nil {
		return nil
	}
	clone := &Proposal{
		ID:        p.ID,
		Operation: p.Operation,
		Proposer:  p.Proposer,
		CreatedAt: p.CreatedAt,
		Executed:  p.Executed,
	}
	clone.Approvals = make([][20]byte, len(p.Approvals))
	copy(clone.Approvals, p.Approvals)
	return clone
}

// HasApproval reports whether the signer has already approved the proposal.
func (p *Proposal) HasApproval(addr [20]byte) bool {
	if p == nil {
		return false
	}
	for _, approval := range p.Approvals {
		if approval == addr {
			return true
		}
	}
	return false
}
