package stream_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/stream"
)

// collect reads every event until the stream is closed.
func collect(s *stream.Session) []stream.Event {
	var out []stream.Event
	for ev := range s.Events() {
		out = append(out, ev)
	}
	return out
}

var _ = Describe("Session", func() {
	It("publishes events in order and then closes", func() {
		s := stream.NewSession(context.Background(), 4)
		s.Start(func(_ context.Context, emit stream.Emit) error {
			for i := range 50 {
				if err := emit(stream.Chunk(fmt.Sprint(i))); err != nil {
					return err
				}
			}
			return nil
		})

		events := collect(s)
		Expect(events).To(HaveLen(50))
		for i, ev := range events {
			Expect(ev.Text).To(Equal(fmt.Sprint(i)))
		}
		Eventually(s.Done()).Should(BeClosed())
		Expect(s.Err()).NotTo(HaveOccurred())
	})

	It("reports a failure as one error chunk before closing", func() {
		s := stream.NewSession(context.Background(), 0)
		s.Start(func(_ context.Context, emit stream.Emit) error {
			_ = emit(stream.Chunk("partial "))
			return errors.New("upstream refused")
		})

		Expect(collect(s)).To(Equal([]stream.Event{
			stream.Chunk("partial "),
			stream.Chunk("Error: upstream refused"),
		}))
		Expect(s.Err()).To(MatchError("upstream refused"))
	})

	It("recovers a producer panic", func() {
		s := stream.NewSession(context.Background(), 0)
		s.Start(func(context.Context, stream.Emit) error {
			panic("nil map")
		})

		events := collect(s)
		Expect(events).To(HaveLen(1))
		Expect(events[0].Text).To(Equal("Error: producer panic: nil map"))
		Expect(s.Err()).To(MatchError(ContainSubstring("nil map")))
	})

	It("stops publishing once cancelled and closes without an error chunk", func() {
		s := stream.NewSession(context.Background(), 1)
		published := make(chan int, 1)
		s.Start(func(_ context.Context, emit stream.Emit) error {
			n := 0
			defer func() { published <- n }()
			for {
				if err := emit(stream.Chunk("x")); err != nil {
					return err
				}
				n++
			}
		})

		Eventually(func() int { return len(s.Events()) }).Should(Equal(1))
		s.Cancel(stream.ErrClientGone)

		Eventually(s.Done()).Should(BeClosed())
		Expect(s.Err()).To(MatchError(stream.ErrClientGone))

		var rest []stream.Event
		for ev := range s.Events() {
			rest = append(rest, ev)
		}
		Expect(rest).NotTo(ContainElement(HaveField("Text", HavePrefix("Error:"))))
		Expect(<-published).To(BeNumerically("<=", 2))
	})

	It("is cancelled with its parent context", func() {
		parent, cancel := context.WithCancel(context.Background())
		s := stream.NewSession(parent, 0)
		s.Start(func(ctx context.Context, _ stream.Emit) error {
			<-ctx.Done()
			return ctx.Err()
		})

		cancel()
		Eventually(s.Done()).Should(BeClosed())
		Expect(collect(s)).To(BeEmpty())
	})

	It("assigns each session its own id", func() {
		a := stream.NewSession(context.Background(), 0)
		b := stream.NewSession(context.Background(), 0)
		Expect(a.ID()).NotTo(BeEmpty())
		Expect(a.ID()).NotTo(Equal(b.ID()))
	})
})
