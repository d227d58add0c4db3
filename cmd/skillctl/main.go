// skillctl is a thin terminal client for the skillboard server. It
// keeps its session in a state file under the user's home directory and
// renews it silently, so a login survives between invocations until the
// refresh token expires or is revoked.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/vkotlyarov/skillboard/internal/client/api"
	"github.com/vkotlyarov/skillboard/internal/client/session"
	"github.com/vkotlyarov/skillboard/internal/client/transport"
	"github.com/vkotlyarov/skillboard/internal/logger"
)

const usage = `Usage: skillctl [flags] <command> [args]

Commands:
  register <username> <email> <password> [name]
  login <email> <password>
  logout
  whoami
  change-password <current> <new>
  skills
  feed
  note <skill-id> <body>
  credits

Flags:
`

func main() {
	fs := pflag.NewFlagSet("skillctl", pflag.ContinueOnError)
	server := fs.String("server", "http://localhost:8000", "Server base URL")
	statePath := fs.String("state", defaultStatePath(), "Session state file")
	verbose := fs.BoolP("verbose", "v", false, "Verbose logging")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	log := logger.NewNoOp()
	if *verbose {
		var err error
		log, err = logger.New(logger.EnvDevelopment, logger.LevelDebug)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if err := run(context.Background(), *server, *statePath, log, args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, server string, statePath string, log logger.Logger, args []string) error {
	sess, err := session.New(session.Config{
		BaseURL:   server,
		StatePath: statePath,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	// Hydrate cached identity and renew it silently. An expired session
	// is not fatal here: commands that need auth will say so
	if err := sess.Init(ctx); err != nil && !errors.Is(err, session.ErrSessionExpired) {
		return err
	}

	// Protected calls go through the refreshing transport, auth calls
	// are made by the session itself
	authed := api.New(server, &http.Client{
		Transport: &transport.AuthTransport{Session: sess},
	})
	public := api.New(server, nil)

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		if len(rest) < 3 {
			return errors.New("register needs <username> <email> <password> [name]")
		}
		name := ""
		if len(rest) > 3 {
			name = rest[3]
		}
		resp, err := public.Register(ctx, rest[0], rest[1], rest[2], name)
		if err != nil {
			return err
		}
		fmt.Printf("Registered %s (%s). Now log in.\n", resp.User.Username, resp.User.Email)
		return nil

	case "login":
		if len(rest) != 2 {
			return errors.New("login needs <email> <password>")
		}
		if err := sess.Login(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		user, _ := sess.User()
		fmt.Printf("Logged in as %s (%s)\n", user.Username, user.Role)
		return nil

	case "logout":
		sess.Logout(ctx)
		fmt.Println("Logged out")
		return nil

	case "whoami":
		if _, ok := sess.User(); !ok {
			fmt.Println("Not logged in")
			return nil
		}
		// Confirm against the server, the cached summary may be stale
		remote, err := authed.Me(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s> role=%s id=%s\n", remote.Username, remote.Email, remote.Role, remote.ID)
		return nil

	case "change-password":
		if len(rest) != 2 {
			return errors.New("change-password needs <current> <new>")
		}
		if err := authed.ChangePassword(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		// Every session is revoked now, this one included
		sess.ForceLogout()
		fmt.Println("Password changed, all sessions revoked. Log in again.")
		return nil

	case "skills":
		skills, err := public.Skills(ctx)
		if err != nil {
			return err
		}
		for _, s := range skills {
			fmt.Printf("%s  %s  %s\n", s.ID, s.Slug, s.Title)
		}
		return nil

	case "feed":
		notes, err := public.Feed(ctx)
		if err != nil {
			return err
		}
		for _, n := range notes {
			fmt.Printf("[%s] %s\n", n.CreatedAt.Format("2006-01-02 15:04"), n.Body)
		}
		return nil

	case "note":
		if len(rest) != 2 {
			return errors.New("note needs <skill-id> <body>")
		}
		skillID, err := uuid.Parse(rest[0])
		if err != nil {
			return fmt.Errorf("bad skill id: %w", err)
		}
		note, err := authed.CreateNote(ctx, skillID, rest[1])
		if err != nil {
			return err
		}
		fmt.Printf("Note %s created, %s credits awarded\n", note.ID, note.Credit)
		return nil

	case "credits":
		balance, err := authed.Credits(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Balance: %s\n", balance)
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".skillboard-session.json"
	}
	return filepath.Join(home, ".skillboard", "session.json")
}
