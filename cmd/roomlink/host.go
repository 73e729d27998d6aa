package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BioHazard786/roomlink/internal/signaling"
	"github.com/BioHazard786/roomlink/internal/ui"
)

var hostCmd = &cobra.Command{
	Use:     "host",
	Aliases: []string{"h"},
	Short:   "Create a room and wait for peers",
	Long: `Create a room whose code is your peer id and open a direct channel to everyone who joins.

Examples:
  roomlink host
  roomlink host --server wss://signal.example.com/ws`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		conn, err := connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		conn.send(&signaling.Message{Type: signaling.TypeCreateRoom})
		roomID, err := await(cmd.Context(), conn, conn.handler.RoomCreated)
		if err != nil {
			return fmt.Errorf("create room: %w", err)
		}

		ui.RenderRoom(roomID, cfg.ServerURL)
		ui.RenderMembers(roomID, conn.self, []string{conn.self})

		var first []*signaling.Message
		stopSpinner := ui.RunWaitingSpinner("Waiting for peers to join...")
		select {
		case msg := <-conn.handler.MemberJoined:
			first = append(first, msg)
		case <-cmd.Context().Done():
		case <-conn.handler.Done:
			stopSpinner()
			return errServerClosed
		}
		stopSpinner()

		return conn.chat(cmd.Context(), roomID, first...)
	},
}

func init() {
	rootCmd.AddCommand(hostCmd)
}
