package service

const (
	seqContest = "contest"
	seqVote    = "vote"
)

type ActivationStatus string

const (
	ActivationActivated       ActivationStatus = "activated"
	ActivationAlreadyAssigned ActivationStatus = "already_assigned"
	ActivationExpired         ActivationStatus = "expired"
	ActivationPriceMissing    ActivationStatus = "price_unavailable"
	ActivationInsufficient    ActivationStatus = "insufficient"
	ActivationBlocked         ActivationStatus = "blocked"
	// the level already runs its allowed number of contests
	ActivationContestLimit ActivationStatus = "contest_limit"
)
