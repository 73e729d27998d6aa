package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BioHazard786/roomlink/internal/config"
	"github.com/BioHazard786/roomlink/internal/p2p"
	"github.com/BioHazard786/roomlink/internal/peer"
	"github.com/BioHazard786/roomlink/internal/signaling"
	"github.com/BioHazard786/roomlink/internal/ui"
)

const requestTimeout = 10 * time.Second

var (
	errServerClosed = errors.New("connection to signaling server lost")
	errTimeout      = errors.New("timed out waiting for the signaling server")
)

// connection is a signaling session with an assigned peer id.
type connection struct {
	cfg     *config.Client
	client  *peer.Client
	handler *peer.Handler
	self    string
}

// connect dials the server and waits for the assigned peer id.
func connect(ctx context.Context, cfg *config.Client) (*connection, error) {
	stopSpinner := ui.RunConnectionSpinner("Connecting to server...")
	defer stopSpinner()

	client := peer.NewClient(cfg.ServerURL)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	handler := peer.NewHandler(client)
	go handler.Start()

	conn := &connection{cfg: cfg, client: client, handler: handler}

	id, err := await(ctx, conn, handler.Assigned)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("waiting for peer id: %w", err)
	}
	conn.self = id
	return conn, nil
}

func (c *connection) Close() {
	c.client.Close()
}

func (c *connection) send(msg *signaling.Message) {
	c.client.SendMessage(msg)
}

// await waits for a value on ch, failing on a server error, a lost
// connection, cancellation or timeout.
func await[T any](ctx context.Context, c *connection, ch chan T) (T, error) {
	var zero T

	timer := time.NewTimer(requestTimeout)
	defer timer.Stop()

	select {
	case v := <-ch:
		return v, nil
	case msg := <-c.handler.Error:
		return zero, errors.New(msg)
	case <-c.handler.Done:
		return zero, errServerClosed
	case <-timer.C:
		return zero, errTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// chat runs a room session: it keeps a peer connection with every other
// member, offering to each newcomer, and relays stdin lines to all of them.
// It returns after leaving the room when ctx is cancelled. Joins received
// before the loop started are passed in as pending.
func (c *connection) chat(ctx context.Context, roomID string, pending ...*signaling.Message) error {
	mgr := p2p.NewManager(c.cfg, c.client, c.self)
	defer mgr.CloseAll()

	lines := readLines()
	members := map[string]bool{c.self: true}

	memberJoined := func(msg *signaling.Message) {
		if msg.RoomID != roomID || members[msg.UserID] {
			return
		}
		members[msg.UserID] = true
		ui.PrintInfof("%s joined", ui.PeerStyle.Render(msg.UserID))
		ui.RenderMembers(roomID, c.self, msg.Users)
		if err := mgr.Offer(msg.UserID); err != nil {
			ui.PrintError(err.Error())
		}
	}
	for _, msg := range pending {
		memberJoined(msg)
	}

	fmt.Println(ui.MutedStyle.Render("Type a message and press enter to send it. Ctrl+C leaves the room."))

	for {
		select {
		case <-ctx.Done():
			c.send(&signaling.Message{Type: signaling.TypeLeaveRoom, RoomID: roomID})
			// Give the write pump a moment to flush the leave.
			time.Sleep(100 * time.Millisecond)
			return nil

		case <-c.handler.Done:
			return errServerClosed

		case msg := <-c.handler.MemberJoined:
			memberJoined(msg)

		case msg := <-c.handler.MemberLeft:
			if msg.RoomID != roomID {
				continue
			}
			delete(members, msg.UserID)
			ui.PrintWarningf("%s left", msg.UserID)
			mgr.Close(msg.UserID)

		case msg := <-c.handler.Relay:
			if err := mgr.HandleRelay(msg); err != nil {
				ui.PrintError(err.Error())
			}

		case errMsg := <-c.handler.Error:
			ui.PrintError(errMsg)

		case ev := <-mgr.Events():
			switch ev.Kind {
			case p2p.EventOpen:
				ui.PrintSuccessf("Direct channel open with %s", ui.PeerStyle.Render(ev.Peer))
			case p2p.EventClosed:
				ui.PrintWarningf("Channel with %s closed", ev.Peer)
			case p2p.EventFrame:
				if ev.Frame.Type == p2p.FrameChat {
					ui.PrintChat(ev.Frame.From, ev.Frame.Text)
				}
			}

		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			n, err := mgr.Broadcast(line)
			if err != nil {
				ui.PrintError(err.Error())
			}
			if n == 0 {
				ui.PrintWarning("No open channels yet")
			}
		}
	}
}

// readLines streams stdin lines until EOF.
func readLines() <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
