// koober 命令行客户端: 登录, 注册, 注销, 查看当前会话
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"koober/internal/biz"
	"koober/internal/biz/model"
	conf "koober/internal/conf/v1"
	"koober/internal/data"
	"koober/internal/pkg/config"
	logger "koober/internal/pkg/log"

	"go.uber.org/zap"
)

const usage = `Usage: koober [-config file] [-v] <command> [flags]

Commands:
  signin   -email <email> [-password <password>]
  signup   -name <full name> -email <email> [-nickname <nickname>] [-phone <phone>] [-password <password>]
  signout
  whoami
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("koober", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := global.String("config", os.Getenv("KOOBER_CONFIG"), "client config file")
	verbose := global.Bool("v", false, "verbose logging")
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	cfg, err := config.LoadClient(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	l, err := logger.New(&conf.Log{Level: level, Development: true})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() { _ = l.Sync() }()

	app, err := newApp(cfg, l)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx := context.Background()
	cmd, cmdArgs := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "signin":
		err = app.signIn(ctx, cmdArgs, stdin, stdout, stderr)
	case "signup":
		err = app.signUp(ctx, cmdArgs, stdin, stdout, stderr)
	case "signout":
		err = app.signOut(ctx, stdout)
	case "whoami":
		err = app.whoami(ctx, stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		global.Usage()
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 2
	}
	if err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

type app struct {
	remoteAPI data.UserAuthenticationRemoteAPI
	store     data.UserSessionStore
	l         *zap.Logger
}

func newApp(cfg *conf.Client, l *zap.Logger) (*app, error) {
	sessionFile := cfg.SessionFile
	if sessionFile == "" {
		var err error
		if sessionFile, err = data.DefaultSessionFile(); err != nil {
			return nil, fmt.Errorf("resolve session file: %w", err)
		}
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	httpClient := &http.Client{Timeout: timeout}

	l.Debug("Client configured",
		zap.String("server_url", cfg.ServerURL),
		zap.String("session_file", sessionFile),
		zap.Duration("timeout", timeout),
	)

	return &app{
		remoteAPI: data.NewUserAuthenticationRemoteAPI(httpClient, cfg.ServerURL, l),
		store:     data.NewFileUserSessionStore(sessionFile, l),
		l:         l,
	}, nil
}

func (a *app) signIn(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("signin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password, read from stdin when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}
	if *password == "" {
		p, err := readPassword(stdin, stdout)
		if err != nil {
			return err
		}
		*password = p
	}

	session, err := biz.NewSignInUseCase(*email, *password, a.remoteAPI, a.store, a.l).Start(ctx)
	if err != nil {
		return err
	}
	printSession(stdout, "Signed in", session)
	return nil
}

func (a *app) signUp(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var account model.NewAccount
	fs.StringVar(&account.FullName, "name", "", "full name")
	fs.StringVar(&account.Nickname, "nickname", "", "display name")
	fs.StringVar(&account.Email, "email", "", "account email")
	fs.StringVar(&account.Phone, "phone", "", "phone number")
	fs.StringVar(&account.Password, "password", "", "password, read from stdin when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if account.FullName == "" || account.Email == "" {
		return errors.New("-name and -email are required")
	}
	if account.Password == "" {
		p, err := readPassword(stdin, stdout)
		if err != nil {
			return err
		}
		account.Password = p
	}

	session, err := biz.NewSignUpUseCase(account, a.remoteAPI, a.store, a.l).Start(ctx)
	if err != nil {
		return err
	}
	printSession(stdout, "Account created", session)
	return nil
}

func (a *app) signOut(ctx context.Context, stdout io.Writer) error {
	session, err := biz.NewSignOutUseCase(a.remoteAPI, a.store, a.l).Start(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		fmt.Fprintln(stdout, "Not signed in")
		return nil
	}
	fmt.Fprintf(stdout, "Signed out %s\n", session.User.Email)
	return nil
}

func (a *app) whoami(ctx context.Context, stdout io.Writer) error {
	session, err := biz.NewStoredSessionUseCase(a.store).Start(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		fmt.Fprintln(stdout, "Not signed in")
		return nil
	}
	if session.Expired(time.Now()) {
		fmt.Fprintf(stdout, "Session for %s has expired, sign in again\n", session.User.Email)
		return nil
	}
	printSession(stdout, "Signed in", session)
	return nil
}

func readPassword(stdin io.Reader, stdout io.Writer) (string, error) {
	fmt.Fprint(stdout, "Password: ")
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printSession(w io.Writer, title string, session *model.UserSession) {
	fmt.Fprintf(w, "%s as %s <%s>\n", title, session.User.DisplayName, session.User.Email)
	if !session.Tokens.ExpiresAt.IsZero() {
		fmt.Fprintf(w, "Session expires at %s\n", session.Tokens.ExpiresAt.Local().Format(time.RFC1123))
	}
}

func printError(w io.Writer, err error) {
	if msg, ok := model.ErrorMessageOf(err); ok {
		fmt.Fprintf(w, "%s: %s\n", msg.Title, msg.Message)
		return
	}
	fmt.Fprintln(w, err)
}
