package domain

import "time"

// AttemptRecord is the journaled terminal state of one purchase attempt.
// Exactly one record per attempt; on-chain actions are irreversible, so the
// record always states whether the swap settled.
type AttemptRecord struct {
	ID          string    `json:"id"`
	Mint        string    `json:"mint"`
	Buyer       string    `json:"buyer"`
	PaymentMint string    `json:"paymentMint"`
	Outcome     Outcome   `json:"outcome"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}
