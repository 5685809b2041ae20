package domain_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"tickevo.app/backend/internal/domain"
	"tickevo.app/backend/internal/model"
)

const (
	alice int64 = 1
	bob   int64 = 2
	carol int64 = 3
	dave  int64 = 4
)

var idle = 60 * time.Second

func turnOf(t *model.Ticket) int64 {
	if t.CurrentTurn == nil {
		return 0
	}
	return *t.CurrentTurn
}

func ptr(v int64) *int64 { return &v }

var _ = Describe("Turn rotation", func() {
	var (
		ticket *model.Ticket
		start  time.Time
	)

	BeforeEach(func() {
		start = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		ticket = &model.Ticket{
			ID:             100,
			Title:          "Printer on fire",
			CreatorID:      alice,
			Stage:          model.StageUnseen,
			Priority:       model.PriorityNormal,
			Queue:          []int64{},
			CreatedAt:      start,
			LastUpdateDate: start,
		}
	})

	Describe("View", func() {
		It("gives the first responder the turn and marks the ticket seen", func() {
			r := domain.View(ticket, bob, start.Add(5*time.Minute), idle)

			Expect(r.Joined).To(BeTrue())
			Expect(r.Seen).To(BeTrue())
			Expect(r.Rotated).To(BeFalse())
			Expect(turnOf(ticket)).To(Equal(bob))
			Expect(ticket.Queue).To(BeEmpty())
			Expect(ticket.Stage).To(Equal(model.StagePendingReview))
		})

		It("does not enqueue the creator even once the ticket is under review", func() {
			ticket.Stage = model.StageUnderReview
			ticket.CurrentTurn = ptr(bob)

			r := domain.View(ticket, alice, start.Add(time.Second), idle)

			Expect(r.Joined).To(BeFalse())
			Expect(ticket.Queue).To(BeEmpty())
		})

		It("leaves the ticket alone when the creator looks at it", func() {
			r := domain.View(ticket, alice, start.Add(time.Second), idle)

			Expect(r.Changed()).To(BeFalse())
			Expect(ticket.CurrentTurn).To(BeNil())
			Expect(ticket.Queue).To(BeEmpty())
			Expect(ticket.Stage).To(Equal(model.StageUnseen))
		})

		It("queues later viewers behind the holder", func() {
			now := start.Add(time.Second)
			domain.View(ticket, bob, now, idle)
			domain.View(ticket, carol, now, idle)
			domain.View(ticket, dave, now, idle)

			Expect(turnOf(ticket)).To(Equal(bob))
			Expect(ticket.Queue).To(Equal([]int64{carol, dave}))
		})

		It("does not duplicate a user who views twice", func() {
			now := start.Add(time.Second)
			domain.View(ticket, bob, now, idle)
			domain.View(ticket, carol, now, idle)
			r := domain.View(ticket, carol, now, idle)

			Expect(r.Joined).To(BeFalse())
			Expect(ticket.Queue).To(Equal([]int64{carol}))
		})

		It("rotates an idle holder to the back of the queue", func() {
			ticket.Stage = model.StagePendingReview
			ticket.CurrentTurn = ptr(bob)
			ticket.Queue = []int64{carol}
			ticket.LastUpdateDate = start

			now := start.Add(61 * time.Second)
			r := domain.View(ticket, carol, now, idle)

			Expect(r.Rotated).To(BeTrue())
			Expect(turnOf(ticket)).To(Equal(carol))
			Expect(ticket.Queue).To(Equal([]int64{bob}))
			Expect(ticket.LastUpdateDate).To(Equal(now))
		})

		It("keeps the holder before the idle timeout", func() {
			ticket.Stage = model.StagePendingReview
			ticket.CurrentTurn = ptr(bob)
			ticket.Queue = []int64{carol}

			r := domain.View(ticket, carol, start.Add(60*time.Second), idle)

			Expect(r.Rotated).To(BeFalse())
			Expect(turnOf(ticket)).To(Equal(bob))
		})

		It("lets a new viewer take over from an idle holder", func() {
			ticket.Stage = model.StageUnderReview
			ticket.CurrentTurn = ptr(bob)

			domain.View(ticket, dave, start.Add(2*time.Minute), idle)

			Expect(turnOf(ticket)).To(Equal(dave))
			Expect(ticket.Queue).To(Equal([]int64{bob}))
		})

		It("releases an idle turn nobody else is waiting for", func() {
			ticket.Stage = model.StagePendingReview
			ticket.CurrentTurn = ptr(bob)

			r := domain.View(ticket, alice, start.Add(2*time.Minute), idle)

			Expect(r.Rotated).To(BeTrue())
			Expect(ticket.CurrentTurn).To(BeNil())
			Expect(ticket.Queue).To(BeEmpty())
		})

		It("hands an unheld turn to the head of the queue", func() {
			ticket.Stage = model.StagePendingReview
			ticket.Queue = []int64{carol, dave}

			r := domain.View(ticket, carol, start.Add(time.Second), idle)

			Expect(r.Granted).To(BeTrue())
			Expect(turnOf(ticket)).To(Equal(carol))
			Expect(ticket.Queue).To(Equal([]int64{dave}))
		})
	})

	Describe("Join", func() {
		It("is idempotent for the holder", func() {
			now := start.Add(time.Second)
			Expect(domain.Join(ticket, bob, now)).To(BeTrue())
			Expect(domain.Join(ticket, bob, now)).To(BeFalse())
			Expect(ticket.Queue).To(BeEmpty())
		})

		It("refuses the creator until the ticket is under review", func() {
			Expect(domain.Join(ticket, alice, start)).To(BeFalse())

			ticket.Stage = model.StageUnderReview
			Expect(domain.Join(ticket, alice, start)).To(BeTrue())
			Expect(turnOf(ticket)).To(Equal(alice))
		})
	})

	Describe("CheckPost", func() {
		It("rejects the creator while the ticket awaits a responder", func() {
			Expect(domain.CheckPost(ticket, alice)).To(MatchError(domain.ErrCreatorMustWait))

			ticket.Stage = model.StagePendingReview
			Expect(domain.CheckPost(ticket, alice)).To(MatchError(domain.ErrCreatorMustWait))
		})

		It("rejects anyone but the holder", func() {
			ticket.CurrentTurn = ptr(bob)
			Expect(domain.CheckPost(ticket, carol)).To(MatchError(domain.ErrNotYourTurn))
			Expect(domain.CheckPost(ticket, bob)).To(Succeed())
		})

		It("allows a participant when nobody holds the turn", func() {
			Expect(domain.CheckPost(ticket, carol)).To(Succeed())
		})
	})

	Describe("AfterPost", func() {
		roster := []int64{alice, bob, carol}

		It("passes the turn to the next waiter and advances the stage", func() {
			ticket.Stage = model.StagePendingReview
			ticket.CurrentTurn = ptr(bob)
			ticket.Queue = []int64{carol}

			at := start.Add(10 * time.Second)
			domain.AfterPost(ticket, bob, roster, at)

			Expect(ticket.Stage).To(Equal(model.StageUnderReview))
			Expect(turnOf(ticket)).To(Equal(carol))
			Expect(ticket.Queue).To(BeEmpty())
			Expect(ticket.LastUpdateDate).To(Equal(at))
		})

		It("refills from the roster, skipping the poster and an excluded creator", func() {
			ticket.CurrentTurn = ptr(bob)

			domain.AfterPost(ticket, bob, []int64{alice, bob, carol, dave}, start)

			// Unseen only moves to Pending Review, so alice is still excluded.
			Expect(ticket.Stage).To(Equal(model.StagePendingReview))
			Expect(turnOf(ticket)).To(Equal(carol))
			Expect(ticket.Queue).To(Equal([]int64{dave}))
		})

		It("includes the creator once the ticket is under review", func() {
			ticket.Stage = model.StagePendingReview
			ticket.CurrentTurn = ptr(bob)

			domain.AfterPost(ticket, bob, roster, start)

			Expect(turnOf(ticket)).To(Equal(alice))
			Expect(ticket.Queue).To(Equal([]int64{carol}))
		})

		It("releases the turn when nobody else exists", func() {
			ticket.CurrentTurn = ptr(bob)

			domain.AfterPost(ticket, bob, []int64{alice, bob}, start)

			Expect(ticket.CurrentTurn).To(BeNil())
			Expect(ticket.Queue).To(BeEmpty())
		})

		It("does not move the stage when the creator posts", func() {
			ticket.Stage = model.StageUnderReview
			ticket.CurrentTurn = ptr(alice)
			ticket.Queue = []int64{bob}

			domain.AfterPost(ticket, alice, roster, start)

			Expect(ticket.Stage).To(Equal(model.StageUnderReview))
			Expect(turnOf(ticket)).To(Equal(bob))
		})

		It("drops the poster from the queue when posting on an unheld turn", func() {
			ticket.Stage = model.StageUnderReview
			ticket.Queue = []int64{bob, carol}

			domain.AfterPost(ticket, carol, roster, start)

			Expect(turnOf(ticket)).To(Equal(bob))
			Expect(ticket.Queue).To(BeEmpty())
		})
	})

	Describe("Yield", func() {
		It("moves the holder behind the next waiter", func() {
			ticket.CurrentTurn = ptr(bob)
			ticket.Queue = []int64{carol, dave}

			Expect(domain.Yield(ticket, bob, start)).To(Succeed())
			Expect(turnOf(ticket)).To(Equal(carol))
			Expect(ticket.Queue).To(Equal([]int64{dave, bob}))
		})

		It("keeps the turn when nobody is waiting", func() {
			ticket.CurrentTurn = ptr(bob)

			Expect(domain.Yield(ticket, bob, start)).To(Succeed())
			Expect(turnOf(ticket)).To(Equal(bob))
		})

		It("rejects a non-holder", func() {
			ticket.CurrentTurn = ptr(bob)
			Expect(domain.Yield(ticket, carol, start)).To(MatchError(domain.ErrNotYourTurn))
		})
	})

	Describe("YieldTo", func() {
		BeforeEach(func() {
			ticket.CurrentTurn = ptr(bob)
			ticket.Queue = []int64{carol, dave}
		})

		It("lets the holder pick someone further back in line", func() {
			later := start.Add(time.Minute)

			Expect(domain.YieldTo(ticket, bob, dave, later)).To(Succeed())
			Expect(turnOf(ticket)).To(Equal(dave))
			Expect(ticket.Queue).To(Equal([]int64{carol, bob}))
			Expect(ticket.LastUpdateDate).To(Equal(later))
		})

		It("refuses a user who is not waiting", func() {
			Expect(domain.YieldTo(ticket, bob, alice, start)).To(MatchError(domain.ErrNotQueued))
			Expect(turnOf(ticket)).To(Equal(bob))
			Expect(ticket.Queue).To(Equal([]int64{carol, dave}))
		})

		It("refuses handing the turn to oneself", func() {
			Expect(domain.YieldTo(ticket, bob, bob, start)).To(MatchError(domain.ErrNotQueued))
		})

		It("rejects a non-holder", func() {
			Expect(domain.YieldTo(ticket, carol, dave, start)).To(MatchError(domain.ErrNotYourTurn))
		})
	})

	Describe("MessageTime", func() {
		It("never goes behind the ticket's last update", func() {
			ticket.LastUpdateDate = start.Add(time.Minute)
			Expect(domain.MessageTime(ticket, start)).To(Equal(start.Add(time.Minute)))
			Expect(domain.MessageTime(ticket, start.Add(2*time.Minute))).To(Equal(start.Add(2 * time.Minute)))
		})
	})

	Describe("AdvanceStage", func() {
		DescribeTable("transitions",
			func(from, to model.Stage, changed bool, wantErr error) {
				ticket.Stage = from
				ok, err := domain.AdvanceStage(ticket, to, start)
				if wantErr != nil {
					Expect(err).To(MatchError(wantErr))
					Expect(ticket.Stage).To(Equal(from))
					return
				}
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(Equal(changed))
				Expect(ticket.Stage).To(Equal(to))
			},
			Entry("unseen to pending", model.StageUnseen, model.StagePendingReview, true, nil),
			Entry("pending to under review", model.StagePendingReview, model.StageUnderReview, true, nil),
			Entry("same stage", model.StageUnderReview, model.StageUnderReview, false, nil),
			Entry("skip a stage", model.StageUnseen, model.StageUnderReview, false, domain.ErrInvalidStage),
			Entry("go backwards", model.StageUnderReview, model.StageUnseen, false, domain.ErrInvalidStage),
			Entry("unknown stage", model.StageUnseen, model.Stage("Closed"), false, domain.ErrInvalidStage),
		)
	})
})

var _ = Describe("SortTickets", func() {
	It("puts high priority first, then oldest, then title", func() {
		t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		tickets := []model.Ticket{
			{ID: 1, Title: "b", Priority: model.PriorityNormal, CreatedAt: t0},
			{ID: 2, Title: "z", Priority: model.PriorityHigh, CreatedAt: t0.Add(time.Hour)},
			{ID: 3, Title: "a", Priority: model.PriorityNormal, CreatedAt: t0},
			{ID: 4, Title: "y", Priority: model.PriorityHigh, CreatedAt: t0},
			{ID: 5, Title: "c", Priority: model.PriorityNormal, CreatedAt: t0.Add(-time.Hour)},
		}

		domain.SortTickets(tickets)

		ids := make([]int64, len(tickets))
		for i, t := range tickets {
			ids[i] = t.ID
		}
		Expect(ids).To(Equal([]int64{4, 2, 5, 3, 1}))
	})
})
