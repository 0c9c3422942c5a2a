package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/smartcommhub/commhub/internal/tui"
	"github.com/smartcommhub/commhub/pkg/auth"
	"github.com/smartcommhub/commhub/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const defaultAPIURL = "http://localhost:8000"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// configDir returns the per-user state directory, COMMHUB_CONFIG_DIR or
// ~/.commhub.
func configDir() (string, error) {
	if dir := os.Getenv("COMMHUB_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	return auth.DefaultDir()
}

// newLogger writes session lifecycle events to <configdir>/commhub.log so
// the log never fights the TUI for the terminal.
func newLogger(dir string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("COMMHUB_LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	f, err := os.OpenFile(filepath.Join(dir, "commhub.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return zerolog.Nop()
	}
	return zerolog.New(f).Level(level).With().Timestamp().Logger()
}

func run() error {
	dir, err := configDir()
	if err != nil {
		return err
	}
	// Env file is optional; process environment wins on conflicts.
	godotenv.Load(filepath.Join(dir, "env")) //nolint:errcheck

	apiURL := os.Getenv("COMMHUB_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("commhub " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "login":
			return runLogin(apiURL, dir, os.Args[2:])
		case "register":
			return runRegister(apiURL, dir, os.Args[2:])
		case "logout":
			return runLogout(dir)
		case "whoami":
			return runWhoami(apiURL, dir)
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
			printHelp()
			os.Exit(2)
		}
	}

	manager := auth.NewManager(apiURL, auth.NewStore(dir), auth.WithLogger(newLogger(dir)))

	app := tui.NewApp(manager)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// promptLine prints label and reads one trimmed line from stdin.
func promptLine(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runLogin(apiURL, dir string, args []string) error {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		var err error
		if username, err = promptLine("Username: "); err != nil {
			return err
		}
	}
	password, err := promptLine("Password: ")
	if err != nil {
		return err
	}

	manager := auth.NewManager(apiURL, auth.NewStore(dir), auth.WithLogger(newLogger(dir)))
	if !manager.Login(context.Background(), username, password) {
		return fmt.Errorf("sign in failed for %q", username)
	}
	p := manager.Session().Profile()
	fmt.Printf("Signed in as %s (%s)\n\n", p.Username, p.Role)

	app := tui.NewApp(manager)
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runRegister(apiURL, dir string, args []string) error {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		var err error
		if username, err = promptLine("Username: "); err != nil {
			return err
		}
	}
	role := domain.RoleFamily
	if len(args) > 1 {
		if role = domain.RoleFromName(args[1]); role == domain.RoleUnknown {
			return fmt.Errorf("unknown role %q (elderly, family or provider)", args[1])
		}
	}
	password, err := promptLine("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptLine("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}
	phone, err := promptLine("Phone (optional): ")
	if err != nil {
		return err
	}

	manager := auth.NewManager(apiURL, auth.NewStore(dir), auth.WithLogger(newLogger(dir)))
	if !manager.Register(context.Background(), username, password, role, phone) {
		return fmt.Errorf("registration failed for %q", username)
	}
	fmt.Printf("Account %s created as %s. Run 'commhub login %s' to sign in.\n", username, role, username)
	return nil
}

func runLogout(dir string) error {
	manager := auth.NewManager("http://localhost", auth.NewStore(dir))
	if !manager.Session().LoggedIn() {
		fmt.Println("Already signed out.")
		return nil
	}
	manager.Logout()
	fmt.Println("Signed out.")
	return nil
}

func runWhoami(apiURL, dir string) error {
	manager := auth.NewManager(apiURL, auth.NewStore(dir))
	if !manager.Session().LoggedIn() {
		fmt.Println("Not signed in.")
		return nil
	}
	if err := manager.FetchProfile(context.Background()); err != nil {
		fmt.Println("Session expired, sign in again.")
		return nil
	}
	p := manager.Session().Profile()
	fmt.Printf("%s (%s)\n", p.Username, p.Role)
	return nil
}

func printHelp() {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#38bdf8"))
	cmd := lipgloss.NewStyle().Foreground(lipgloss.Color("#e2e8f0"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("#64748b"))

	fmt.Println(title.Render("commhub") + dim.Render(" - community service terminal"))
	fmt.Println()
	fmt.Println(cmd.Render("  commhub                    ") + dim.Render("open the terminal UI"))
	fmt.Println(cmd.Render("  commhub login [user]       ") + dim.Render("sign in, then open the UI"))
	fmt.Println(cmd.Render("  commhub register [user]    ") + dim.Render("create an account"))
	fmt.Println(cmd.Render("  commhub whoami             ") + dim.Render("show the signed-in account"))
	fmt.Println(cmd.Render("  commhub logout             ") + dim.Render("discard the saved session"))
	fmt.Println(cmd.Render("  commhub version            ") + dim.Render("print the version"))
	fmt.Println()
	fmt.Println(dim.Render("  COMMHUB_API_URL     backend address (default " + defaultAPIURL + ")"))
	fmt.Println(dim.Render("  COMMHUB_CONFIG_DIR  state directory (default ~/.commhub)"))
	fmt.Println(dim.Render("  COMMHUB_LOG_LEVEL   log level for commhub.log"))
}
