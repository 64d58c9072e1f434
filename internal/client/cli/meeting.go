package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/KrishnaKumarSoni/gmeetpro/internal/client/media"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/client/session"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/client/signaling"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/config"
	"github.com/KrishnaKumarSoni/gmeetpro/internal/domain"
)

func dialSession() (*session.Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	sig := signaling.NewClient(serverURL)
	if err := sig.Connect(); err != nil {
		return nil, err
	}

	factory := media.NewPionFactory(cfg.STUNServers)
	return session.New(sig, factory), nil
}

// enterRoom joins and then services the terminal until interrupt: plain
// lines go out as chat, slash commands drive the local controls.
func enterRoom(parent context.Context, sess *session.Session, roomID domain.RoomID) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess.Start(ctx)

	joinCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err := sess.Join(joinCtx, roomID)
	cancel()
	if err != nil {
		return err
	}
	fmt.Printf("joined room %s as %s\n", roomID, sess.Self().DisplayName())

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			sess.Leave()
			return nil
		case line, ok := <-lines:
			if !ok {
				sess.Leave()
				return nil
			}
			handleLine(sess, line)
		}
	}
}

func handleLine(sess *session.Session, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if !strings.HasPrefix(line, "/") {
		if err := sess.SendChat(line); err != nil {
			fmt.Printf("chat: %v\n", err)
		}
		return
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/who":
		for _, e := range sess.Roster().Entries() {
			state := "joined"
			if e.Connected {
				state = "connected"
			}
			fmt.Printf("%s  %s  audio=%v video=%v host=%v spot=%v (%s)\n",
				e.ID, e.Name, e.Audio, e.Video, e.Host, e.Spotlighted, state)
		}
	case "/audio":
		sess.ToggleAudio(len(fields) > 1 && fields[1] == "on")
	case "/video":
		sess.ToggleVideo(len(fields) > 1 && fields[1] == "on")
	case "/mute":
		if len(fields) > 1 {
			sess.MutePeer(domain.ParticipantID(fields[1]))
		}
	case "/spot":
		if len(fields) > 1 {
			sess.Spotlight(domain.ParticipantID(fields[1]))
		}
	case "/chatlog":
		for _, m := range sess.Roster().ChatLog() {
			fmt.Printf("[%d] %s: %s\n", m.Timestamp, m.Sender, m.Content)
		}
	default:
		fmt.Println("commands: /who /audio on|off /video on|off /mute <id> /spot <id> /chatlog")
	}
}
