package main

import (
	"github.com/spf13/cobra"

	"github.com/BioHazard786/roomlink/internal/signaling"
	"github.com/BioHazard786/roomlink/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:     "check <room>",
	Aliases: []string{"c"},
	Short:   "Check whether a room exists",
	Args:    cobra.ExactArgs(1),
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
		conn.send(&signaling.Message{Type: signaling.TypeCheckRoom, RoomID: roomID})

		exists, err := await(cmd.Context(), conn, conn.handler.RoomExists)
		if err != nil {
			return err
		}

		if exists {
			ui.PrintSuccessf("Room %s exists", ui.BoldStyle.Render(roomID))
		} else {
			ui.PrintWarningf("Room %s does not exist", roomID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
