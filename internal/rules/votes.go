package rules

import "challenge-stake-go/internal/models"

// VoteAction is what happens to the stored vote row
type VoteAction int

const (
	VoteInsert VoteAction = iota
	VoteRetract
	VoteFlip
)

func (a VoteAction) String() string {
	switch a {
	case VoteInsert:
		return "insert"
	case VoteRetract:
		return "retract"
	case VoteFlip:
		return "flip"
	}
	return "unknown"
}

// VoteOutcome describes the row action and the counter changes it implies.
type VoteOutcome struct {
	Action      VoteAction
	VerifyDelta int
	FakeDelta   int
	MyVote      *models.VoteType
}

// ResolveVote decides what a vote does given the voter's existing vote, if any.
func ResolveVote(existing *models.VoteType, incoming models.VoteType) VoteOutcome {
	if existing == nil {
		out := VoteOutcome{Action: VoteInsert, MyVote: &incoming}
		out.bump(incoming, 1)
		return out
	}
	if *existing == incoming {
		out := VoteOutcome{Action: VoteRetract}
		out.bump(incoming, -1)
		return out
	}
	out := VoteOutcome{Action: VoteFlip, MyVote: &incoming}
	out.bump(*existing, -1)
	out.bump(incoming, 1)
	return out
}

func (o *VoteOutcome) bump(v models.VoteType, n int) {
	switch v {
	case models.VoteVerify:
		o.VerifyDelta += n
	case models.VoteFake:
		o.FakeDelta += n
	}
}

// ConsensusStatus returns the status a tally points to. It needs at least
// minVotes ballots and a strict majority; otherwise ok is false.
func ConsensusStatus(verifyVotes, fakeVotes, minVotes int) (status models.VerificationStatus, ok bool) {
	if minVotes < 1 {
		minVotes = 1
	}
	if verifyVotes+fakeVotes < minVotes || verifyVotes == fakeVotes {
		return "", false
	}
	if verifyVotes > fakeVotes {
		return models.VerificationVerified, true
	}
	return models.VerificationFake, true
}
