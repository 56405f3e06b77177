package escrow

// Query operations reflect the committed state exactly and have no side
// effects; they stay available while the module is paused. Collection
// queries are a linear scan over all records in ascending creation order.

// GetEscrow returns the snapshot for the given id.
func (e *Engine) GetEscrow(id [32]byte) (*Info, error) {
	esc, err := e.loadEscrow(id)
	if err != nil {
		return nil, err
	}
	return esc.Info(), nil
}

// EscrowExists reports whether the id references a record.
func (e *Engine) EscrowExists(id [32]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	_, ok := e.state.EscrowGet(id)
	return ok, nil
}

// EscrowCount returns the number of records ever created.
func (e *Engine) EscrowCount() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.EscrowCount(), nil
}

// GetDisputeInfo returns the dispute attached to the record, or nil when no
// dispute has ever been initiated.
func (e *Engine) GetDisputeInfo(id [32]byte) (*DisputeInfo, error) {
	esc, err := e.loadEscrow(id)
	if err != nil {
		return nil, err
	}
	return esc.Dispute.Clone(), nil
}

// CanDispute reports whether InitiateDispute would pass its state
// precondition: the record is Active and carries no dispute.
func (e *Engine) CanDispute(id [32]byte) (bool, error) {
	esc, err := e.loadEscrow(id)
	if err != nil {
		return false, err
	}
	return esc.Status == StatusActive && esc.Dispute == nil, nil
}

func (e *Engine) scan(match func(*Escrow) bool) ([]*Info, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	count := e.state.EscrowCount()
	out := make([]*Info, 0, count)
	for seq := uint64(0); seq < count; seq++ {
		esc, ok := e.state.EscrowBySequence(seq)
		if !ok {
			continue
		}
		if match == nil || match(esc) {
			out = append(out, esc.Info())
		}
	}
	return out, nil
}

// GetAllEscrows returns every record in ascending creation order.
func (e *Engine) GetAllEscrows() ([]*Info, error) {
	return e.scan(nil)
}

// GetEscrowsByStatus returns the records currently in the given status.
func (e *Engine) GetEscrowsByStatus(status Status) ([]*Info, error) {
	return e.scan(func(esc *Escrow) bool { return esc.Status == status })
}

// GetEscrowsByParticipant returns the records where the principal is the
// sender or the recipient.
func (e *Engine) GetEscrowsByParticipant(participant [20]byte) ([]*Info, error) {
	return e.scan(func(esc *Escrow) bool {
		return esc.Sender == participant || esc.Recipient == participant
	})
}
