package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/scoreboard/scoreboard/internal/auth"
	"github.com/scoreboard/scoreboard/internal/backend"
	"github.com/scoreboard/scoreboard/internal/config"
	"github.com/scoreboard/scoreboard/internal/repository"
	"github.com/scoreboard/scoreboard/internal/service"
)

type output struct {
	Username string `json:"username"`
	Backend  string `json:"backend"`
	Table    string `json:"table"`
	Force    bool   `json:"force"`
}

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "create-user",
		Usage: "register a user who may edit scoreboards",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "username",
				Aliases:  []string{"u"},
				Usage:    "name the user logs in with",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "plaintext password, hashed with PASS_SALT before storing",
				EnvVars: []string{"SCOREBOARD_USER_PASSWORD"},
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "replace an existing user with the same name",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "plain",
				Usage: "output format: plain or json",
			},
		},
		Action: createUser,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func createUser(c *cli.Context) error {
	password := c.String("password")
	if password == "" {
		return errors.New("a password is required (--password or SCOREBOARD_USER_PASSWORD)")
	}

	format := c.String("format")
	if format != "plain" && format != "json" {
		return fmt.Errorf("unknown format %q", format)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.StoreBackend == config.BackendMemory {
		return errors.New("STORE_BACKEND=memory does not persist users; use postgres or redis, or set SEED_USERNAME and SEED_PASSWORD for the API")
	}

	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	passwords := auth.NewPasswordManager(cfg.PassSalt)
	if passwords.UsesDefaultPepper() {
		fmt.Fprintln(os.Stderr, "warning: PASS_SALT is not set; hashing with the built-in pepper")
	}

	users := repository.NewUserStore(b.Users)
	svc := service.NewAuthService(users, passwords, nil, nil)

	user, err := svc.Register(ctx, service.RegisterInput{
		Username:  c.String("username"),
		Password:  password,
		Overwrite: c.Bool("force"),
	})
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			return fmt.Errorf("user %q already exists; pass --force to replace it", c.String("username"))
		}
		return fmt.Errorf("create user: %w", err)
	}

	out := output{
		Username: user.Username,
		Backend:  cfg.StoreBackend,
		Table:    cfg.UsersTable,
		Force:    c.Bool("force"),
	}

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Created user %s in %s table %s\n", out.Username, out.Backend, out.Table)
	return nil
}
