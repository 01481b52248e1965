// Package askcmder provides the ask command, a terminal client for a running
// scribe server's streaming routes.
package askcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/cliui"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/config"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/logger"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/sse"
)

type askCommander struct {
	target     string
	recap      bool
	action     string
	problem    string
	subproblem string
	answer     string
	strategy   string
	mistake    string
	render     bool
	rawPath    string
	debug      bool

	out    io.Writer
	log    *log.Logger
	client *http.Client
}

// turn is one message of the conversation sent to the server.
type turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type feedbackBody struct {
	Message        map[string][]turn `json:"message"`
	StudentMistake string            `json:"student_mistake"`
	Strategy       string            `json:"strategy"`
	CorrectAnswer  string            `json:"correct_answer"`
}

type tutorBody struct {
	Action      string `json:"action"`
	Problem     string `json:"problem,omitempty"`
	Subproblem  string `json:"subproblem,omitempty"`
	ChatHistory []turn `json:"chatHistory"`
}

// payload is either a chunk or a verdict event.
type payload struct {
	Chunk     *string `json:"chunk"`
	IsCorrect *bool   `json:"isCorrect"`
}

const askLongDesc string = `Send a learner message to a running scribe server and print the streamed
reply as it arrives.

By default the message goes to /chat with the feedback flags. Use --recap for
an end-of-problem summary, or --action to drive the scripted /api/ai tutor
(initialize, validate, next).

Examples:
  scribe ask "is it range(1, n)?" --answer "range(1, n+1)" --strategy tracing
  scribe ask --recap "done" --render
  scribe ask --action validate "for i in range(10): total += i"
  scribe ask "why?" --raw reply.sse`

const askShortDesc string = "Ask a running scribe server for a streamed reply"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagTarget})
			cmder.target = v.GetString("client.target")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.out = cmd.OutOrStdout()
			cmder.log = logger.NewPretty(cmd.ErrOrStderr(), cmder.debug)
			cmder.client = http.DefaultClient

			message := ""
			if len(args) == 1 {
				message = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return cmder.run(ctx, message)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)
	cmd.Flags().BoolVar(&cmder.recap, "recap", false, "Ask for a recap instead of the next question")
	cmd.Flags().StringVar(&cmder.action, "action", "", "Scripted tutor action (initialize, validate, next)")
	cmd.Flags().StringVar(&cmder.problem, "problem", "", "Problem text for tutor actions")
	cmd.Flags().StringVar(&cmder.subproblem, "subproblem", "", "Subproblem text for tutor actions")
	cmd.Flags().StringVar(&cmder.answer, "answer", "", "Correct answer the tutor steers towards")
	cmd.Flags().StringVar(&cmder.strategy, "strategy", "", "Concepts to focus on")
	cmd.Flags().StringVar(&cmder.mistake, "mistake", "", "The learner's mistake")
	cmd.Flags().BoolVarP(&cmder.render, "render", "r", false, "Wait for the whole reply and render it as markdown")
	cmd.Flags().StringVar(&cmder.rawPath, "raw", "", "Also save the raw event stream, pings included, to this file")

	return cmd
}

func (c *askCommander) run(ctx context.Context, message string) error {
	path, body, err := c.request(message)
	if err != nil {
		return err
	}

	url := strings.TrimRight(c.target, "/") + path
	c.log.Debug("sending request", "url", url)

	if !c.render {
		err := c.stream(ctx, url, body, func(p payload) error {
			return c.print(p)
		})
		fmt.Fprintln(c.out)
		return err
	}

	var reply strings.Builder
	err = cliui.Step(c.out, "Waiting for the tutor", func() error {
		return c.stream(ctx, url, body, func(p payload) error {
			if p.IsCorrect != nil {
				return c.print(p)
			}
			if p.Chunk != nil {
				reply.WriteString(*p.Chunk)
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	rendered, err := cliui.RenderMarkdown(reply.String())
	if err != nil {
		c.log.Warn("could not render markdown", "err", err)
	}
	fmt.Fprint(c.out, rendered)
	return nil
}

// request builds the route and JSON body for the flags.
func (c *askCommander) request(message string) (string, []byte, error) {
	var history []turn
	if message != "" {
		history = []turn{{Role: "user", Content: message}}
	}

	if c.action != "" {
		body, err := json.Marshal(tutorBody{
			Action:      c.action,
			Problem:     c.problem,
			Subproblem:  c.subproblem,
			ChatHistory: history,
		})
		return "/api/ai", body, err
	}

	if message == "" {
		return "", nil, errors.New("a message is required unless --action is set")
	}

	path := "/chat"
	if c.recap {
		path = "/recap"
	}
	body, err := json.Marshal(feedbackBody{
		Message:        map[string][]turn{"messages": history},
		StudentMistake: c.mistake,
		Strategy:       c.strategy,
		CorrectAnswer:  c.answer,
	})
	return path, body, err
}

// stream posts body to url and hands every decoded SSE payload to onEvent.
func (c *askCommander) stream(ctx context.Context, url string, body []byte, onEvent func(payload) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	r := sse.NewReader(resp.Body)
	if c.rawPath != "" {
		f, err := os.Create(c.rawPath)
		if err != nil {
			return fmt.Errorf("creating raw stream file: %w", err)
		}
		defer f.Close()
		r = sse.NewTeeReader(resp.Body, f)
	}
	for {
		ev, err := r.Next()
		if err != nil {
			return fmt.Errorf("reading stream: %w", err)
		}
		if ev == nil {
			c.log.Debug("stream closed", "keepalives", r.Comments())
			return nil
		}

		var p payload
		if err := json.Unmarshal([]byte(ev.Data), &p); err != nil {
			c.log.Warn("skipping malformed event", "data", ev.Data)
			continue
		}
		if err := onEvent(p); err != nil {
			return err
		}
	}
}

func (c *askCommander) print(p payload) error {
	switch {
	case p.IsCorrect != nil:
		_, err := fmt.Fprintln(c.out, cliui.Verdict(*p.IsCorrect))
		return err
	case p.Chunk != nil:
		_, err := fmt.Fprint(c.out, *p.Chunk)
		return err
	}
	return nil
}
