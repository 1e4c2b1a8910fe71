package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"tour-booking/internal/logging"
	"tour-booking/internal/models"
	"tour-booking/internal/service"
	"tour-booking/internal/storage"

	"golang.org/x/term"
)

const (
	defaultDriver = "sqlite"
	defaultDBPath = "tours.db"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Email address (login name)")
	name := fs.String("name", "", "Display name")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	role := fs.String("role", string(models.RoleUser), "Role: user or admin")
	setRole := fs.Bool("set-role", false, "Change the role of an existing user instead of creating one")
	driver := fs.String("driver", defaultDriver, "Database driver: sqlite or postgres")
	dbPath := fs.String("db", defaultDBPath, "Database file path or connection string")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" || (*name == "" && !*setRole) {
		fmt.Fprintln(stdout, "Usage: adduser -email <email> -name <name> [-password <password>] [-role user|admin] [-driver sqlite|postgres] [-db <path>]")
		fmt.Fprintln(stdout, "       adduser -set-role -email <email> -role user|admin")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email, name")
	}

	// Environment overrides apply only when the flag kept its default.
	if v := os.Getenv("DB_DRIVER"); v != "" && *driver == defaultDriver {
		*driver = v
	}
	if v := os.Getenv("DB_PATH"); v != "" && *dbPath == defaultDBPath {
		*dbPath = v
	}

	logger, err := logging.New(stderr, "warn", "text")
	if err != nil {
		return err
	}

	db, err := storage.Open(ctx, *driver, *dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if *setRole {
		return changeRole(ctx, db, *email, *role, stdout)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout) // Print newline after password input
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	// Registration without a token service: this binary never logs anyone in.
	users := service.NewAuthService(db, nil, logger, nil)
	user, err := users.Register(ctx, service.RegisterInput{
		Name:     *name,
		Email:    *email,
		Password: password,
		Role:     *role,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	total, err := db.UserCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %s and role %s (%d users total)\n", user.Email, user.ID, user.Role, total)
	return nil
}

func changeRole(ctx context.Context, db *storage.DB, email, role string, stdout io.Writer) error {
	if role != string(models.RoleUser) && role != string(models.RoleAdmin) {
		return fmt.Errorf("invalid role %q: want user or admin", role)
	}

	user, err := db.GetUserByEmail(ctx, service.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("user %s does not exist", email)
		}
		return err
	}

	if err := db.UpdateUserRole(ctx, user.ID, models.Role(role)); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	fmt.Fprintf(stdout, "User %s now has role %s\n", user.Email, role)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Check if stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
