// Command apikey manages API keys for Meeteo users.
//
//	apikey create -user <id> -name <name>
//	apikey list   -user <id>
//	apikey revoke -user <id> -id <key id>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kiranshivaraju/meeteo/internal/apikey"
	"github.com/kiranshivaraju/meeteo/internal/config"
	"github.com/kiranshivaraju/meeteo/internal/logging"
	"github.com/kiranshivaraju/meeteo/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const usage = `usage:
  apikey create -user <id> -name <name>
  apikey list   -user <id>
  apikey revoke -user <id> -id <key id>`

func main() {
	logging.New(os.Stderr, "warn")

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	cmd, err := parseCommand(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	return cmd.exec(ctx, store.NewPostgresStore(pool), out)
}

type command struct {
	name    string
	userID  string
	keyName string
	keyID   uuid.UUID
}

func parseCommand(args []string) (*command, error) {
	cmd := &command{name: args[0]}
	fset := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	fset.StringVar(&cmd.userID, "user", "", "user id the key belongs to")
	fset.StringVar(&cmd.keyName, "name", "", "key name, unique per user")
	id := fset.String("id", "", "key id to revoke")

	switch cmd.name {
	case "create", "list", "revoke":
	default:
		return nil, fmt.Errorf("unknown command %q\n%s", cmd.name, usage)
	}
	if err := fset.Parse(args[1:]); err != nil {
		return nil, fmt.Errorf("%w\n%s", err, usage)
	}
	if cmd.userID == "" {
		return nil, fmt.Errorf("-user is required\n%s", usage)
	}

	switch cmd.name {
	case "create":
		if cmd.keyName == "" {
			return nil, fmt.Errorf("-name is required\n%s", usage)
		}
	case "revoke":
		parsed, err := uuid.Parse(*id)
		if err != nil {
			return nil, fmt.Errorf("-id must be a UUID\n%s", usage)
		}
		cmd.keyID = parsed
	}
	return cmd, nil
}

func (c *command) exec(ctx context.Context, s store.Store, out io.Writer) error {
	switch c.name {
	case "create":
		issued, err := apikey.Issue(ctx, s, c.userID, c.keyName, bcrypt.DefaultCost)
		if errors.Is(err, store.ErrDuplicateKey) {
			return fmt.Errorf("user %s already has a key named %q", c.userID, c.keyName)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "id:  %s\nkey: %s\n", issued.Key.ID, issued.RawKey)
		fmt.Fprintln(out, "Store this key now; it cannot be shown again.")
		return nil

	case "list":
		keys, err := s.ListAPIKeys(ctx, c.userID)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPREFIX\tCREATED\tLAST USED")
		for _, k := range keys {
			lastUsed := "never"
			if k.LastUsedAt != nil {
				lastUsed = k.LastUsedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", k.ID, k.Name, k.KeyPrefix, k.CreatedAt.Format(time.RFC3339), lastUsed)
		}
		return tw.Flush()

	case "revoke":
		if err := s.RevokeAPIKey(ctx, c.keyID, c.userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no active key %s for user %s", c.keyID, c.userID)
			}
			return err
		}
		fmt.Fprintf(out, "revoked %s\n", c.keyID)
		return nil
	}
	return fmt.Errorf("unknown command %q", c.name)
}
