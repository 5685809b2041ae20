package domain

import (
	"errors"
	"slices"
	"time"

	"tickevo.app/backend/internal/model"
)

var (
	ErrNotYourTurn     = errors.New("not your turn")
	ErrCreatorMustWait = errors.New("ticket creator must wait for a response")
	ErrInvalidStage    = errors.New("invalid stage transition")
	ErrNotQueued       = errors.New("user is not waiting in the queue")
)

// The turn holder is never in the queue; taking the turn pops the queue head.
// Every change of holder restarts the idle clock (LastUpdateDate).

// CreatorExcluded reports whether the creator is kept out of the queue and the turn.
// That is the case until a responder has picked the ticket up.
func CreatorExcluded(t *model.Ticket) bool {
	return t.Stage == model.StageUnseen || t.Stage == model.StagePendingReview
}

// CanParticipate reports whether userID may queue for or hold the turn.
func CanParticipate(t *model.Ticket, userID int64) bool {
	return !(t.IsCreator(userID) && CreatorExcluded(t))
}

// Join puts userID in line. A user with nobody holding the turn takes it directly.
// Returns false when nothing changed (excluded creator, holder, already queued).
func Join(t *model.Ticket, userID int64, now time.Time) bool {
	if !CanParticipate(t, userID) || t.HasTurn(userID) || t.InQueue(userID) {
		return false
	}
	if t.CurrentTurn == nil {
		grant(t, userID, now)
		return true
	}
	t.Queue = append(t.Queue, userID)
	return true
}

// TakeNext hands an unheld turn to the head of the queue.
func TakeNext(t *model.Ticket, now time.Time) bool {
	if t.CurrentTurn != nil || len(t.Queue) == 0 {
		return false
	}
	next := t.Queue[0]
	t.Queue = slices.Clone(t.Queue[1:])
	grant(t, next, now)
	return true
}

// Rotate sends the holder to the back of the queue and gives the turn to the head.
// With nobody waiting the turn is released.
func Rotate(t *model.Ticket, now time.Time) bool {
	if t.CurrentTurn == nil {
		return false
	}
	if len(t.Queue) == 0 {
		t.CurrentTurn = nil
		t.LastUpdateDate = now
		return true
	}
	holder := *t.CurrentTurn
	t.CurrentTurn = nil
	t.Queue = append(slices.Clone(t.Queue), holder)
	return TakeNext(t, now)
}

// RotateIfIdle rotates when the holder has been silent for longer than idle.
func RotateIfIdle(t *model.Ticket, now time.Time, idle time.Duration) bool {
	if t.CurrentTurn == nil || now.Sub(t.LastUpdateDate) <= idle {
		return false
	}
	return Rotate(t, now)
}

// Yield is a voluntary Rotate by the holder. Unlike an idle rotation the holder
// keeps the turn when nobody else is waiting.
func Yield(t *model.Ticket, userID int64, now time.Time) error {
	if !t.HasTurn(userID) {
		return ErrNotYourTurn
	}
	if len(t.Queue) == 0 {
		return nil
	}
	Rotate(t, now)
	return nil
}

// YieldTo hands the turn to nextID, who must already be waiting. The holder
// goes to the back of the queue.
func YieldTo(t *model.Ticket, userID, nextID int64, now time.Time) error {
	if !t.HasTurn(userID) {
		return ErrNotYourTurn
	}
	if !t.InQueue(nextID) {
		return ErrNotQueued
	}
	queue := slices.DeleteFunc(slices.Clone(t.Queue), func(u int64) bool { return u == nextID })
	t.Queue = append(queue, userID)
	grant(t, nextID, now)
	return nil
}

// MarkSeen moves an Unseen ticket to Pending Review when someone other than
// the creator looks at it.
func MarkSeen(t *model.Ticket, viewerID int64, now time.Time) bool {
	if t.Stage != model.StageUnseen || t.IsCreator(viewerID) {
		return false
	}
	t.Stage = model.StagePendingReview
	t.LastUpdateDate = now
	return true
}

// ViewResult lists what a view changed on the ticket.
type ViewResult struct {
	Joined  bool
	Rotated bool
	Granted bool
	Seen    bool
}

func (r ViewResult) Changed() bool {
	return r.Joined || r.Rotated || r.Granted || r.Seen
}

// View applies the side effects of a user opening the ticket, in order:
// join the queue, rotate an idle holder, fill an empty turn, mark seen.
// The creator is never enqueued by viewing; JoinQueue is explicit for them.
func View(t *model.Ticket, viewerID int64, now time.Time, idle time.Duration) ViewResult {
	var r ViewResult
	if !t.IsCreator(viewerID) {
		r.Joined = Join(t, viewerID, now)
	}
	r.Rotated = RotateIfIdle(t, now, idle)
	r.Granted = TakeNext(t, now)
	r.Seen = MarkSeen(t, viewerID, now)
	return r
}

// CheckPost validates that userID may post the next message.
func CheckPost(t *model.Ticket, userID int64) error {
	if t.IsCreator(userID) && CreatorExcluded(t) {
		return ErrCreatorMustWait
	}
	if t.CurrentTurn != nil && *t.CurrentTurn != userID {
		return ErrNotYourTurn
	}
	return nil
}

// AfterPost consumes the poster's turn. roster is every known user in signup
// order; it refills the queue when nobody is waiting.
func AfterPost(t *model.Ticket, posterID int64, roster []int64, at time.Time) {
	if !t.IsCreator(posterID) {
		switch t.Stage {
		case model.StageUnseen:
			t.Stage = model.StagePendingReview
		case model.StagePendingReview:
			t.Stage = model.StageUnderReview
		}
	}

	t.Queue = slices.DeleteFunc(slices.Clone(t.Queue), func(u int64) bool { return u == posterID })
	t.CurrentTurn = nil

	if len(t.Queue) == 0 {
		for _, u := range roster {
			if u != posterID && CanParticipate(t, u) && !slices.Contains(t.Queue, u) {
				t.Queue = append(t.Queue, u)
			}
		}
	}

	TakeNext(t, at)
	t.LastUpdateDate = at
}

// MessageTime keeps per-ticket timestamps non-decreasing across server clocks.
func MessageTime(t *model.Ticket, now time.Time) time.Time {
	if now.Before(t.LastUpdateDate) {
		return t.LastUpdateDate
	}
	return now
}

// AdvanceStage moves the ticket exactly one stage forward. Re-applying the
// current stage is a no-op.
func AdvanceStage(t *model.Ticket, target model.Stage, now time.Time) (bool, error) {
	if !target.Valid() {
		return false, ErrInvalidStage
	}
	if target == t.Stage {
		return false, nil
	}
	if target.Rank() != t.Stage.Rank()+1 {
		return false, ErrInvalidStage
	}
	t.Stage = target
	t.LastUpdateDate = now
	return true, nil
}

func grant(t *model.Ticket, userID int64, now time.Time) {
	holder := userID
	t.CurrentTurn = &holder
	t.LastUpdateDate = now
}

// NeedsRoster reports whether AfterPost for posterID will refill the queue
// from the user roster.
func NeedsRoster(t *model.Ticket, posterID int64) bool {
	for _, u := range t.Queue {
		if u != posterID {
			return false
		}
	}
	return true
}
