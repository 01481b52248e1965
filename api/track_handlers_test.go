package api

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/api/worker"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/eventstream"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm/provider/echo"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/logger"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage/inmemory"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/timer"
)

var _ = Describe("Timer handlers", func() {
	var (
		server *Server
		driver *inmemory.Driver
		pub    *recordingPublisher
		pool   *worker.Pool
	)

	BeforeEach(func() {
		var err error
		driver = inmemory.NewDriver()
		pub = &recordingPublisher{}
		pool, err = worker.NewPool(&worker.Config{Publisher: pub, Logger: logger.Nop()})
		Expect(err).NotTo(HaveOccurred())

		server, err = NewServer(testConfig(), Deps{
			Provider: echo.New(),
			Storer:   driver,
			Pool:     pool,
			Logger:   logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		pool.Close()
	})

	start := func() string {
		resp := postJSON(server, "/api/track/start-subproblem", `{
			"user_id": "u1", "run_id": "r1", "module_number": 1, "problem_index": 2, "subproblem_index": 3
		}`)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var out timer.Response
		readJSON(resp, &out)
		Expect(out.SessionID).NotTo(BeEmpty())
		return out.SessionID
	}

	It("starts a timer with the subproblem coordinates", func() {
		id := start()

		log, err := driver.Get(ctx(), id)
		Expect(err).NotTo(HaveOccurred())
		Expect(log.UserID).To(Equal("u1"))
		Expect(*log.SubproblemIndex).To(Equal(3))
		Expect(log.EndTime).To(BeNil())
	})

	It("ends a started timer", func() {
		id := start()

		resp := postJSON(server, "/api/track/end-subproblem", `{"session_id": "`+id+`"}`)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var out timer.Response
		readJSON(resp, &out)
		Expect(out.Success).To(BeTrue())

		log, err := driver.Get(ctx(), id)
		Expect(err).NotTo(HaveOccurred())
		Expect(log.EndTime).NotTo(BeNil())
		Expect(log.DurationSeconds).NotTo(BeNil())
	})

	It("publishes the ended timer", func() {
		id := start()
		postJSON(server, "/api/track/end-subproblem", `{"session_id": "`+id+`"}`).Body.Close()

		Eventually(func() []*eventstream.Event {
			return pub.ofType(eventstream.EventTypeTimerEnded)
		}).Should(HaveLen(1))
		Expect(pub.ofType(eventstream.EventTypeTimerEnded)[0].Timer.SessionID).To(Equal(id))
	})

	It("requires a session id", func() {
		resp := postJSON(server, "/api/track/end-subproblem", `{}`)
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

		var out timer.Response
		readJSON(resp, &out)
		Expect(out.Error).To(Equal("session_id is required"))
	})

	It("returns 404 for an unknown session", func() {
		resp := postJSON(server, "/api/track/end-subproblem", `{"session_id": "nope"}`)
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))

		var out timer.Response
		readJSON(resp, &out)
		Expect(out.Error).To(Equal("Session not found"))
	})

	It("rejects malformed JSON", func() {
		resp := postJSON(server, "/api/track/end-subproblem", `session_id=1`)
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
	})
})
