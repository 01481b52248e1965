package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/api/worker"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/eventstream"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/logger"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/sse"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage/inmemory"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/stream"
)

// slowStreamer streams numbered deltas with a pause between them and counts
// how many it handed to the session.
type slowStreamer struct {
	deltas  int
	pause   time.Duration
	emitted atomic.Int64
}

func (s *slowStreamer) Name() string { return "slow" }

func (s *slowStreamer) Complete(context.Context, *llm.ChatRequest) (string, error) {
	return "", nil
}

func (s *slowStreamer) Stream(ctx context.Context, _ *llm.ChatRequest, onDelta func(string) error) error {
	for range s.deltas {
		if err := stream.Sleep(ctx, s.pause); err != nil {
			return err
		}
		if err := onDelta(strings.Repeat("x", 16)); err != nil {
			return err
		}
		s.emitted.Add(1)
	}
	return nil
}

var _ = Describe("Client disconnect over TCP", func() {
	var (
		server   *Server
		pub      *recordingPublisher
		pool     *worker.Pool
		streamer *slowStreamer
		baseURL  string
	)

	BeforeEach(func() {
		var err error
		pub = &recordingPublisher{}
		pool, err = worker.NewPool(&worker.Config{Publisher: pub, Logger: logger.Nop()})
		Expect(err).NotTo(HaveOccurred())

		streamer = &slowStreamer{deltas: 500, pause: 10 * time.Millisecond}
		server, err = NewServer(testConfig(), Deps{
			Provider: streamer,
			Storer:   inmemory.NewDriver(),
			Pool:     pool,
			Logger:   logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		baseURL = "http://" + ln.Addr().String()
		go func() { _ = server.app.Listener(ln) }()
	})

	AfterEach(func() {
		Expect(server.Shutdown()).To(Succeed())
		pool.Close()
	})

	It("cancels the producer once the client hangs up", func() {
		client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
		resp, err := client.Post(baseURL+"/chat", "application/json", strings.NewReader(feedbackBody))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		r := sse.NewReader(resp.Body)
		for range 2 {
			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev).NotTo(BeNil())

			var payload map[string]any
			Expect(json.Unmarshal([]byte(ev.Data), &payload)).To(Succeed())
			Expect(payload).To(HaveKey("chunk"))
		}
		Expect(resp.Body.Close()).To(Succeed())

		Eventually(func() []*eventstream.Event {
			return pub.ofType(eventstream.EventTypeReplyStreamed)
		}, 3*time.Second).Should(HaveLen(1))
		Expect(pub.ofType(eventstream.EventTypeReplyStreamed)[0].Reply.Outcome).
			To(Equal(eventstream.OutcomeClientGone))

		stopped := streamer.emitted.Load()
		Expect(stopped).To(BeNumerically("<", streamer.deltas))
		Consistently(streamer.emitted.Load, 200*time.Millisecond).Should(Equal(stopped))
	})
})
