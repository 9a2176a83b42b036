package storage

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/staticbackendhq/imgpaste/logger"
	"golang.org/x/oauth2"
)

// Runner executes name with args and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

var tokenArgs = []string{"auth", "print-access-token"}

// Locator finds a working gcloud executable and asks it for an access token.
//
// Processes started from a desktop session often get a PATH that does not
// include the SDK even though it works from a terminal, so well known install
// locations are tried before the bare command name.
type Locator struct {
	Candidates []string
	Run        Runner
	Log        *logger.Logger
}

// NewLocator returns a Locator over DefaultCandidates using os/exec.
func NewLocator(log *logger.Logger) *Locator {
	return &Locator{
		Candidates: DefaultCandidates(),
		Run:        execRunner,
		Log:        log,
	}
}

// DefaultCandidates lists gcloud install locations for macOS (arm64 and
// x86_64 Homebrew, SDK archive) and Linux (packages, snap), ending with the
// bare name resolved through PATH.
func DefaultCandidates() []string {
	candidates := []string{
		"/opt/homebrew/bin/gcloud",
		"/opt/homebrew/Caskroom/google-cloud-sdk/latest/google-cloud-sdk/bin/gcloud",
		"/usr/local/bin/gcloud",
		"/usr/local/Caskroom/google-cloud-sdk/latest/google-cloud-sdk/bin/gcloud",
		"/usr/bin/gcloud",
		"/usr/lib/google-cloud-sdk/bin/gcloud",
		"/snap/bin/gcloud",
	}

	if home, err := os.UserHomeDir(); err == nil && len(home) > 0 {
		candidates = append(candidates, filepath.Join(home, "google-cloud-sdk", "bin", "gcloud"))
	}

	return append(candidates, "gcloud")
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

// AcquireToken tries every candidate in order. A failing candidate moves on
// to the next one; a candidate that runs but prints nothing stops the search
// with ErrEmptyToken.
func (l *Locator) AcquireToken(ctx context.Context) (string, error) {
	run := l.Run
	if run == nil {
		run = execRunner
	}

	for _, candidate := range l.Candidates {
		out, err := run(ctx, candidate, tokenArgs...)
		l.debug(candidate, err)
		if err != nil {
			continue
		}

		token := strings.TrimSpace(string(out))
		if len(token) == 0 {
			return "", ErrEmptyToken
		}
		return token, nil
	}

	return "", ErrExecutableNotFound
}

func (l *Locator) debug(candidate string, err error) {
	if l.Log == nil {
		return
	}
	if err != nil {
		l.Log.Debug().Err(err).Str("candidate", candidate).Msg("gcloud candidate failed")
		return
	}
	l.Log.Debug().Str("candidate", candidate).Msg("gcloud candidate answered")
}

// TokenSource adapts the locator to oauth2. Every Token call runs gcloud
// again, nothing is cached.
func (l *Locator) TokenSource(ctx context.Context) oauth2.TokenSource {
	return locatorSource{ctx: ctx, l: l}
}

type locatorSource struct {
	ctx context.Context
	l   *Locator
}

func (s locatorSource) Token() (*oauth2.Token, error) {
	tok, err := s.l.AcquireToken(s.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}
