package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BioHazard786/roomlink/internal/signaling"
	"github.com/BioHazard786/roomlink/internal/ui"
)

var joinCmd = &cobra.Command{
	Use:     "join <room>",
	Aliases: []string{"j"},
	Short:   "Join a room by its code",
	Long: `Join an existing room. Members already in the room open a direct channel to you.

Examples:
  roomlink join 2f1c9a4e-7b7d-4f0e-9d7c-1b2a3c4d5e6f
  roomlink join kitten-waffle-stardust-happy`,
	Args: cobra.ExactArgs(1),
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

		roomID := args[0]
		conn.send(&signaling.Message{Type: signaling.TypeJoinRoom, RoomID: roomID})
		joined, err := await(cmd.Context(), conn, conn.handler.RoomJoined)
		if err != nil {
			return fmt.Errorf("join room: %w", err)
		}

		ui.PrintSuccessf("Joined room %s as %s", ui.BoldStyle.Render(roomID), ui.PeerStyle.Render(conn.self))
		ui.RenderMembers(roomID, conn.self, joined.Users)

		return conn.chat(cmd.Context(), roomID)
	},
}

func init() {
	rootCmd.AddCommand(joinCmd)
}
