package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/typerace/internal/model"
	"github.com/mcoot/typerace/internal/web/ws"
)

const closeWait = time.Second

// playOptions controls a play connection
type playOptions struct {
	name  string
	start bool   // Ask to start the round once joined
	text  string // Typed as soon as the round starts; the command exits when it ends
}

func newPlayCmd() *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play <id>",
		Short: "Join a session as a player",
		Long: `Join a session over WebSocket and print its events.

Each line read from stdin is sent as your typed text so far.
The commands /start and /leave start the round (host only) and leave
the session. With --text the given text is typed as soon as the round
starts and the command exits once the round is over.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.name == "" {
				opts.name = cfg.Name
			}
			if opts.name == "" {
				return errors.New("a player name is required (--name or TYPERACE_NAME)")
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var input io.Reader
			if opts.text == "" {
				input = cmd.InOrStdin()
			}
			return play(ctx, args[0], opts, input, NewOutput(cfg.Output))
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Player name (env: TYPERACE_NAME)")
	cmd.Flags().BoolVar(&opts.start, "start", false, "Start the round once joined (host only)")
	cmd.Flags().StringVar(&opts.text, "text", "", "Text to type when the round starts")

	return cmd
}

func play(ctx context.Context, sessionID string, opts playOptions, input io.Reader, out *Output) error {
	endpoint, err := client.WebSocketURL("/api/v1/sessions/"+url.PathEscape(sessionID)+"/ws", url.Values{"name": {opts.name}})
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			return responseError(resp.StatusCode, body)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "Connected to %s\n", endpoint)
	}

	incoming := make(chan ws.Message)
	readErr := make(chan error, 1)
	go func() {
		for {
			var msg ws.Message
			if err := conn.ReadJSON(&msg); err != nil {
				readErr <- err
				return
			}
			select {
			case incoming <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	var lines <-chan string
	if input != nil {
		lines = readLines(ctx, input)
	}

	startRequested := false
	roundOver := false

	for {
		select {
		case <-ctx.Done():
			_ = send(conn, model.EventLeave, nil)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(closeWait))
			return nil

		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)

		case msg := <-incoming:
			out.PrintEvent(msg)

			switch msg.Event {
			case model.EventNewHost:
				if opts.start && !startRequested {
					startRequested = true
					if err := send(conn, model.EventStartGame, nil); err != nil {
						return err
					}
				}
			case model.EventGameStarted:
				if opts.text != "" {
					if err := send(conn, model.EventPlayerTyped, opts.text); err != nil {
						return err
					}
				}
			case model.EventGameFinished:
				roundOver = true
			case model.EventPlayers:
				// The final roster follows game-finished
				if roundOver && opts.text != "" {
					return send(conn, model.EventLeave, nil)
				}
			}

		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			switch strings.TrimSpace(line) {
			case "/start":
				err = send(conn, model.EventStartGame, nil)
			case "/leave":
				err = send(conn, model.EventLeave, nil)
			default:
				err = send(conn, model.EventPlayerTyped, line)
			}
			if err != nil {
				return err
			}
		}
	}
}

func send(conn *websocket.Conn, event model.EventType, data any) error {
	msg, err := ws.NewMessage(event, data)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("send %s: %w", event, err)
	}
	return nil
}

func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
