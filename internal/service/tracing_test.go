package service_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"tickevo.app/backend/common/logger"
	"tickevo.app/backend/internal/queue"
	"tickevo.app/backend/internal/service"
)

var _ = Describe("operation spans", func() {
	var recorder *tracetest.SpanRecorder

	BeforeEach(func() {
		previous := otel.GetTracerProvider()
		recorder = tracetest.NewSpanRecorder()
		otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
		DeferCleanup(func() { otel.SetTracerProvider(previous) })
	})

	It("writes the posted message inside the post span", func() {
		db := newMemDB()
		seedUsers(db)
		t := aliceTicket()
		t.CurrentTurn = ptr(bob)
		db.putTicket(t)
		svc := service.NewMessageService(newDeps(db, &mockProducer{}, &fakeClock{now: t0}))

		_, err := svc.Post(context.Background(), ticketID, bob, "on it")
		Expect(err).NotTo(HaveOccurred())

		var post sdktrace.ReadOnlySpan
		for _, s := range recorder.Ended() {
			if s.Name() == "ticket.post_message" {
				post = s
			}
		}
		Expect(post).NotTo(BeNil())

		written := trace.SpanContextFromContext(db.messageCtx)
		Expect(written.SpanID()).To(Equal(post.SpanContext().SpanID()))
	})
})

var _ = Describe("event publishing", func() {
	It("logs a failed publish with the event type and keeps the write", func() {
		var buf bytes.Buffer
		previous := slog.Default()
		slog.SetDefault(slog.New(logger.NewTraceHandler(slog.NewTextHandler(&buf, nil))))
		DeferCleanup(func() { slog.SetDefault(previous) })

		db := newMemDB()
		seedUsers(db)
		db.putTicket(aliceTicket())
		events := &mockProducer{publishFn: func(queue.Event) error { return errors.New("stream unavailable") }}
		svc := service.NewTicketService(newDeps(db, events, &fakeClock{now: t0}))

		Expect(svc.JoinQueue(context.Background(), ticketID, bob)).To(Succeed())

		Expect(db.snapshot(ticketID).CurrentTurn).To(Equal(ptr(bob)))
		Expect(buf.String()).To(ContainSubstring("failed to publish ticket event"))
		Expect(buf.String()).To(ContainSubstring("event_type=queue_joined"))
		Expect(buf.String()).To(ContainSubstring("ticket_id=5000"))
	})
})
