package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ashureev/rasman/internal/accounts"
	"github.com/ashureev/rasman/internal/chatrooms"
	"github.com/ashureev/rasman/internal/config"
	"github.com/ashureev/rasman/internal/domain"
	"github.com/ashureev/rasman/internal/impersonation"
	"github.com/ashureev/rasman/internal/rasclient"
	"github.com/ashureev/rasman/internal/sessions"
	"github.com/ashureev/rasman/internal/settings"
	"github.com/ashureev/rasman/internal/store"
)

const usageText = `usage:
  rasman settings show | set -base-url URL -port PORT | test
  rasman users list
  rasman users add -screen-name NAME -password PW [-icq]
  rasman users delete -screen-name NAME [-yes]
  rasman users delete-all [-yes]
  rasman users passwd -screen-name NAME -password PW -confirm PW
  rasman im send -from NAME -to NAME -text TEXT
  rasman im history [-limit N]
  rasman rooms list
  rasman rooms create -name NAME [-kind Public|Private]
  rasman rooms show -name NAME [-private]
  rasman sessions
`

type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

type app struct {
	cfg      *config.Config
	repo     store.Repository
	settings *settings.Service
	logger   *slog.Logger
	in       io.Reader
	out      io.Writer
	styles   styles
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usagef("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "settings":
		return a.runSettings(ctx, rest)
	case "users":
		return a.runUsers(ctx, rest)
	case "im":
		return a.runIM(ctx, rest)
	case "rooms":
		return a.runRooms(ctx, rest)
	case "sessions":
		return a.runSessions(ctx, rest)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(a.out, usageText)
		return nil
	default:
		return usagef("unknown command %q", cmd)
	}
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usagef("%s: %v", fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return usagef("%s: unexpected arguments %v", fs.Name(), fs.Args())
	}
	return nil
}

func subcommand(group string, args []string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, usagef("%s: missing subcommand", group)
	}
	return args[0], args[1:], nil
}

func (a *app) client(ctx context.Context) (*rasclient.Client, error) {
	return a.settings.Client(ctx)
}

func (a *app) confirm(prompt string) bool {
	fmt.Fprintf(a.out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (a *app) runSettings(ctx context.Context, args []string) error {
	sub, rest, err := subcommand("settings", args)
	if err != nil {
		return err
	}

	switch sub {
	case "show":
		if err := a.parse(a.flags("settings show"), rest); err != nil {
			return err
		}
		current, err := a.repo.GetSettings(ctx)
		if err != nil {
			return err
		}
		a.renderSettings(current)
		return nil

	case "set":
		fs := a.flags("settings set")
		baseURL := fs.String("base-url", "", "server base URL, e.g. http://localhost")
		port := fs.String("port", "", "server management API port")
		if err := a.parse(fs, rest); err != nil {
			return err
		}
		saved, err := a.settings.Update(ctx, *baseURL, *port)
		if err != nil {
			return err
		}
		a.renderSettings(saved)
		return nil

	case "test":
		if err := a.parse(a.flags("settings test"), rest); err != nil {
			return err
		}
		status := a.settings.TestConnection(ctx)
		if status.OK {
			fmt.Fprintln(a.out, a.styles.ok.Render("Success: "+status.Message))
			return nil
		}
		fmt.Fprintln(a.out, a.styles.fail.Render("Failure: "+status.Message))
		return errReported

	default:
		return usagef("settings: unknown subcommand %q", sub)
	}
}

// errReported marks a failure whose message has already been written.
var errReported = errors.New("failure already reported")

func (a *app) runUsers(ctx context.Context, args []string) error {
	sub, rest, err := subcommand("users", args)
	if err != nil {
		return err
	}

	client, err := a.client(ctx)
	if err != nil {
		return err
	}
	svc := accounts.NewService(client, a.logger)

	switch sub {
	case "list":
		if err := a.parse(a.flags("users list"), rest); err != nil {
			return err
		}
		users, err := svc.ListUsers(ctx)
		if err != nil {
			return err
		}
		a.renderUsers(users)
		return nil

	case "add":
		fs := a.flags("users add")
		var form accounts.AddUserForm
		fs.StringVar(&form.ScreenName, "screen-name", "", "screen name of the new account")
		fs.StringVar(&form.Password, "password", "", "password of the new account")
		fs.BoolVar(&form.IsICQ, "icq", false, "create an ICQ account")
		if err := a.parse(fs, rest); err != nil {
			return err
		}
		msg, err := svc.AddUser(ctx, &form)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, a.styles.ok.Render(msg))
		return nil

	case "delete":
		fs := a.flags("users delete")
		screenName := fs.String("screen-name", "", "screen name to delete")
		yes := fs.Bool("yes", false, "skip the confirmation prompt")
		if err := a.parse(fs, rest); err != nil {
			return err
		}
		if *screenName == "" {
			return domain.Invalid("Screen Name cannot be empty.")
		}
		if !*yes && !a.confirm(fmt.Sprintf("Are you sure you want to delete the user %s?", *screenName)) {
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}
		users, err := svc.DeleteUser(ctx, *screenName)
		if err != nil {
			return err
		}
		a.renderUsers(users)
		return nil

	case "delete-all":
		fs := a.flags("users delete-all")
		yes := fs.Bool("yes", false, "skip the confirmation prompt")
		if err := a.parse(fs, rest); err != nil {
			return err
		}
		users, err := svc.ListUsers(ctx)
		if err != nil {
			return err
		}
		if !*yes && !a.confirm(fmt.Sprintf("Are you sure you want to delete all %d users?", len(users))) {
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}
		n, err := svc.DeleteAllUsers(ctx)
		fmt.Fprintf(a.out, "Deleted %d users.\n", n)
		return err

	case "passwd":
		fs := a.flags("users passwd")
		var form accounts.ChangePasswordForm
		fs.StringVar(&form.ScreenName, "screen-name", "", "account whose password changes")
		fs.StringVar(&form.NewPassword, "password", "", "new password")
		fs.StringVar(&form.ConfirmPassword, "confirm", "", "new password again")
		if err := a.parse(fs, rest); err != nil {
			return err
		}
		if err := svc.ChangePassword(ctx, &form); err != nil {
			return err
		}
		fmt.Fprintln(a.out, a.styles.ok.Render("Password changed for "+form.ScreenName+"."))
		return nil

	default:
		return usagef("users: unknown subcommand %q", sub)
	}
}

func (a *app) runIM(ctx context.Context, args []string) error {
	sub, rest, err := subcommand("im", args)
	if err != nil {
		return err
	}

	switch sub {
	case "send":
		fs := a.flags("im send")
		var form impersonation.MessageForm
		fs.StringVar(&form.From, "from", "", "sender screen name")
		fs.StringVar(&form.To, "to", "", "recipient screen name")
		fs.StringVar(&form.Text, "text", "", "message text")
		if err := a.parse(fs, rest); err != nil {
			return err
		}
		client, err := a.client(ctx)
		if err != nil {
			return err
		}
		msg, err := impersonation.NewLog(client, a.repo, a.logger).Send(ctx, &form)
		if msg != nil {
			a.renderHistory([]*domain.SentMessage{msg})
		}
		return err

	case "history":
		fs := a.flags("im history")
		limit := fs.Int("limit", 20, "number of most recent entries, 0 for all")
		if err := a.parse(fs, rest); err != nil {
			return err
		}
		// History is local and readable without server settings.
		msgs, err := impersonation.NewLog(nil, a.repo, a.logger).Entries(ctx, *limit)
		if err != nil {
			return err
		}
		a.renderHistory(msgs)
		return nil

	default:
		return usagef("im: unknown subcommand %q", sub)
	}
}

func (a *app) runRooms(ctx context.Context, args []string) error {
	sub, rest, err := subcommand("rooms", args)
	if err != nil {
		return err
	}

	client, err := a.client(ctx)
	if err != nil {
		return err
	}
	browser := chatrooms.NewBrowser(client, a.logger)

	switch sub {
	case "list":
		if err := a.parse(a.flags("rooms list"), rest); err != nil {
			return err
		}
		browser.Refresh(ctx)
		a.renderRooms("Public Chat Rooms", browser.PublicRooms())
		a.renderRooms("Private Chat Rooms", browser.PrivateRooms())
		return nil

	case "create":
		fs := a.flags("rooms create")
		name := fs.String("name", "", "chat room name")
		kindFlag := fs.String("kind", string(domain.RoomPublic), "Public or Private")
		if err := a.parse(fs, rest); err != nil {
			return err
		}
		kind, err := domain.ParseRoomKind(*kindFlag)
		if err != nil {
			return domain.Invalid("Chat room type must be Public or Private.")
		}
		if err := browser.CreateRoom(ctx, *name, kind); err != nil {
			return err
		}
		a.renderRooms("Public Chat Rooms", browser.PublicRooms())
		a.renderRooms("Private Chat Rooms", browser.PrivateRooms())
		return nil

	case "show":
		fs := a.flags("rooms show")
		name := fs.String("name", "", "chat room name")
		private := fs.Bool("private", false, "look in private rooms")
		if err := a.parse(fs, rest); err != nil {
			return err
		}
		kind := domain.RoomPublic
		if *private {
			kind = domain.RoomPrivate
		}
		if kind == domain.RoomPrivate {
			browser.ListPrivateRooms(ctx)
		} else {
			browser.ListPublicRooms(ctx)
		}
		room, ok := browser.FindRoom(*name, kind)
		if !ok {
			return rasclient.Fail("show chat room", fmt.Errorf("no %s room named %q", strings.ToLower(string(kind)), *name))
		}
		a.renderRoomDetail(room)
		return nil

	default:
		return usagef("rooms: unknown subcommand %q", sub)
	}
}

func (a *app) runSessions(ctx context.Context, args []string) error {
	if err := a.parse(a.flags("sessions"), args); err != nil {
		return err
	}
	client, err := a.client(ctx)
	if err != nil {
		return err
	}
	list, err := sessions.NewMonitor(client, a.logger).ListActiveSessions(ctx)
	if err != nil {
		return err
	}
	a.renderSessions(list)
	return nil
}
