package service

import (
	"context"

	"contest-backend/internal/common/errors"
	"contest-backend/internal/common/validation"
	"contest-backend/internal/features/contest/models"
)

// Vote records voterUserID's single vote in the contest of entryID.
func (e *Engine) Vote(ctx context.Context, caller models.Caller, entryID, voterUserID string) (models.Vote, error) {
	if err := validation.ValidateID("voter_user_id", voterUserID); err != nil {
		return models.Vote{}, errors.NewValidationError("voter_user_id", err.Error())
	}

	var vote models.Vote
	_, err := e.update(ctx, func(op *opContext) error {
		if _, err := authorizeProfile(&op.tx.Reader, caller, voterUserID); err != nil {
			return err
		}

		entry, ok := op.tx.Entry(entryID)
		if !ok {
			return errors.With(ErrEntryNotFound, detail("entry_id", entryID))
		}
		if entry.Blocked {
			return errors.With(ErrEntryBlocked, detail("entry_id", entryID))
		}
		if entry.ContestID == 0 {
			return errors.With(ErrEntryNotActivated, detail("entry_id", entryID))
		}

		contest, ok := op.tx.Contest(entry.ContestID)
		if !ok {
			return errors.With(ErrContestNotFound, detail("contest_id", entry.ContestID))
		}
		if !contest.VotingOpen(op.ts()) {
			return errors.With(ErrOutsideVotingWindow, map[string]interface{}{
				"contest_id":     contest.ID,
				"vote_starts_at": contest.VoteStartsAt,
				"vote_ends_at":   contest.VoteEndsAt(),
			})
		}

		if prev, voted := op.tx.VoteByContestVoter(contest.ID, voterUserID); voted {
			return errors.With(ErrAlreadyVoted, detail("vote_id", prev.ID))
		}

		vote = models.Vote{
			ID:          op.tx.NextID(seqVote),
			ContestID:   contest.ID,
			EntryID:     entry.ID,
			VoterUserID: voterUserID,
			CreatedAt:   op.ts(),
		}
		op.tx.PutVote(vote)

		entry.Votes++
		op.tx.PutEntry(entry)
		return nil
	})
	if err != nil {
		return models.Vote{}, err
	}

	e.log.Debug().Uint64("contest_id", vote.ContestID).Str("entry_id", vote.EntryID).Msg("Vote recorded")
	return vote, nil
}
