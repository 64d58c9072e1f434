package cli

import (
	"github.com/spf13/cobra"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
)

var joinCmd = &cobra.Command{
	Use:   "join <room-id>",
	Short: "Join an existing room",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := dialSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		return enterRoom(cmd.Context(), sess, domain.RoomID(args[0]))
	},
}
