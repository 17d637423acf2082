// RevPulse dashboard server. Embeds the web/ frontend and serves it
// alongside the JSON API, the WebSocket push channel, and the Prometheus
// endpoint. Configuration comes from REVPULSE_* environment variables or
// an optional config file next to the executable.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"revpulse/internal/app"
	"revpulse/internal/config"
	"revpulse/internal/security"
	"revpulse/web"
)

func main() {
	saveCredential := flag.Bool("save-insight-credential", false,
		"read an insight API key and passphrase from stdin, store them encrypted, and exit")
	flag.Parse()

	if *saveCredential {
		if err := saveInsightCredential(os.Stdin, os.Stdout); err != nil {
			slog.Error("Failed to save insight credential", "error", err)
			os.Exit(1)
		}
		return
	}

	application, err := app.NewApplication(web.Files)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}

// saveInsightCredential reads the API key on the first line of in and the
// passphrase on the second, then writes the encrypted credentials file to
// the standard path. The server decrypts it at startup using the same
// passphrase from REVPULSE_INSIGHT_PASSPHRASE, so the key itself never has
// to live in the environment.
func saveInsightCredential(in io.Reader, out io.Writer) error {
	paths, err := config.GetPaths()
	if err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	scanner := bufio.NewScanner(in)
	key, err := readLine(scanner, "API key")
	if err != nil {
		return err
	}
	passphrase, err := readLine(scanner, "passphrase")
	if err != nil {
		return err
	}

	store := security.NewCredentialStore(paths.CredentialsFile, slog.Default())
	if err := store.Save(key, passphrase); err != nil {
		return err
	}

	fmt.Fprintf(out, "Credential saved to %s\n", store.Path())
	fmt.Fprintln(out, "Set REVPULSE_INSIGHT_PASSPHRASE to the same passphrase when starting the server.")
	return nil
}

func readLine(scanner *bufio.Scanner, what string) (string, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read %s: %w", what, err)
		}
		return "", fmt.Errorf("read %s: unexpected end of input", what)
	}
	line := scanner.Text()
	if line == "" {
		return "", fmt.Errorf("read %s: empty line", what)
	}
	return line, nil
}
