package cli

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// sessionCookie is the name of the store's session cookie.
const sessionCookie = "is"

func newLoginCmd() *cobra.Command {
	var server, provider, name, image string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the store and save the session cookie",
		Long: "Opens a browser on the store's sign-in page. Paste the session cookie it sets " +
			"to let cbox post comments as you.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(os.Stdin, cmd.OutOrStdout(), server, provider, name, image)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "store URL (default: from config or http://localhost:8080)")
	cmd.Flags().StringVar(&provider, "provider", "github", "sign-in provider")
	cmd.Flags().StringVar(&name, "name", "", "display name shown next to your comments")
	cmd.Flags().StringVar(&image, "image", "", "avatar URL shown next to your comments")

	return cmd
}

func runLogin(in io.Reader, out io.Writer, serverFlag, provider, name, image string) error {
	serverURL := serverFlag
	if serverURL == "" {
		serverURL = getServerURL()
	}

	authURL := loginURL(serverURL, provider)

	fmt.Fprintln(out, "Opening browser for authentication...")
	fmt.Fprintf(out, "If the browser doesn't open, visit: %s\n\n", authURL)

	if err := openBrowser(authURL); err != nil {
		fmt.Fprintf(os.Stderr, "Could not open browser: %v\n", err)
	}

	fmt.Fprintf(out, "Paste the value of the %q cookie: ", sessionCookie)
	reader := bufio.NewReader(in)
	raw, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || raw == "") {
		return fmt.Errorf("reading input: %w", err)
	}

	cookie, err := normalizeCookie(raw)
	if err != nil {
		return err
	}

	// Load existing config to preserve other fields
	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}

	cfg.Cookie = cookie
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
	}
	if name != "" {
		cfg.Name = name
	}
	if image != "" {
		cfg.Image = image
	}

	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "✓ Session saved. You're logged in!")
	return nil
}

// loginURL returns the store's sign-in route, which sends the browser back
// to the store root when done.
func loginURL(serverURL, provider string) string {
	base := strings.TrimRight(serverURL, "/")
	return fmt.Sprintf("%s/auth/%s?b=%s", base, url.PathEscape(provider), url.QueryEscape(base+"/"))
}

// normalizeCookie accepts either a bare session value or a full
// "name=value" pair and returns a Cookie header value.
func normalizeCookie(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(v, "Cookie:")
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("no session cookie provided")
	}
	if !strings.Contains(v, "=") {
		return sessionCookie + "=" + v, nil
	}
	if strings.HasPrefix(v, "=") {
		return "", fmt.Errorf("invalid session cookie: missing name")
	}
	return v, nil
}

var openBrowser = func(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
