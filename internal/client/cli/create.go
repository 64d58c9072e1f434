package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a room and join it as host",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := dialSession()
		if err != nil {
			return err
		}
		defer sess.Close()
		sess.Start(cmd.Context())

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		roomID, err := sess.CreateRoom(ctx)
		cancel()
		if err != nil {
			return err
		}
		fmt.Printf("room created: %s\n", roomID)

		return enterRoom(cmd.Context(), sess, roomID)
	},
}
