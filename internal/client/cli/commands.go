package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/daylighthq/daylight-client/internal/client/resume"
	clientsync "github.com/daylighthq/daylight-client/internal/client/sync"
	"github.com/daylighthq/daylight-client/internal/common"
)

// Status prints the draft, queue and session state.
func (a *App) Status(ctx context.Context) error {
	d := a.engine.Draft()

	printlnFn("Application:", d.ID)
	printlnFn("  status:", string(d.Status))
	printlnFn("  answers:", len(d.Answers), " eeo:", len(d.EEO))
	switch {
	case d.PendingAttachmentName != "":
		printlnFn("  attachment: pending upload of", d.PendingAttachmentName)
	case d.ResumeKey != "":
		printlnFn("  attachment: uploaded as", d.ResumeKey)
	default:
		printlnFn("  attachment: none")
	}
	if d.NeedsBootstrap {
		printlnFn("  not yet registered with the server")
	}

	actions := a.engine.PendingActions()
	if len(actions) == 0 {
		printlnFn("Outbox: empty")
	} else {
		kinds := make([]string, 0, len(actions))
		for _, act := range actions {
			kinds = append(kinds, string(act.Kind))
		}
		printlnFn("Outbox:", strings.Join(kinds, ", "))
	}

	if a.session.Token() == "" {
		printlnFn("Session: none")
	} else if a.session.Valid() {
		printlnFn("Session: valid", a.session.Email())
	} else {
		printlnFn("Session: expired or not yet validated")
	}
	return nil
}

// Answer records a free-text answer. With one argument the value is read as
// multiline input.
func (a *App) Answer(ctx context.Context, args []string) error {
	key, value, err := a.fieldArgs(args, "answer", true)
	if err != nil {
		return err
	}
	a.engine.SetAnswer(ctx, key, value)
	printlnFn("Saved", key)
	return nil
}

// EEO records a demographic answer.
func (a *App) EEO(ctx context.Context, args []string) error {
	key, value, err := a.fieldArgs(args, "eeo", false)
	if err != nil {
		return err
	}
	a.engine.SetEEO(ctx, key, value)
	printlnFn("Saved", key)
	return nil
}

func (a *App) fieldArgs(args []string, cmd string, multiline bool) (string, string, error) {
	if len(args) == 0 {
		printlnFn("Usage:", cmd, "<key> [value]")
		return "", "", errors.New("missing key")
	}
	key := args[0]
	if len(args) > 1 {
		return key, strings.Join(args[1:], " "), nil
	}

	var value string
	var err error
	if multiline {
		value, err = GetMultiline(a.reader, "Enter "+key, a.out)
	} else {
		value, err = GetSimpleText(a.reader, "Enter "+key, a.out)
	}
	if err != nil {
		return "", "", err
	}
	return key, value, nil
}

// Attach selects a resume file. The selection is durable immediately; the
// upload happens on the next flush. Extraction suggestions fill only answers
// the user has not touched.
func (a *App) Attach(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: attach <path>")
		return errors.New("missing path")
	}
	path := args[0]

	data, _, err := fileSource{}.Open(path)
	if err != nil {
		printlnFn("Cannot read", path, "-", err.Error())
		return err
	}

	a.engine.Attach(ctx, path)
	printlnFn("Attached", filepath.Base(path), "- upload queued")

	a.suggestFromResume(ctx, path, data)
	return nil
}

// suggestFromResume applies extraction heuristics. Failure here never blocks
// the attachment itself.
func (a *App) suggestFromResume(ctx context.Context, path string, data []byte) {
	text := resume.ExtractText(path, data)
	if text == "" {
		return
	}

	d := a.engine.Draft()
	for key, value := range resume.MapToAnswers(text).Fields() {
		if d.Answers[key] != "" {
			continue
		}
		a.engine.SetAnswer(ctx, key, value)
		printlnFn("Suggested", key, "from resume (edit with 'answer", key+"')")
	}
}

// Submit queues the submission and flushes.
func (a *App) Submit(ctx context.Context) error {
	err := a.engine.Submit(ctx)
	switch {
	case errors.Is(err, common.ErrAttachmentPending):
		printlnFn("Resume upload still pending; reconnect or 'retry' first")
		return err
	case errors.Is(err, common.ErrAlreadySubmitted):
		printlnFn("Application already submitted")
		return err
	case err != nil:
		printlnFn("Submit failed:", err.Error())
		return err
	}

	a.reportOutcome()
	return nil
}

// Retry forces a flush attempt, the manual equivalent of a reconnect
// trigger.
func (a *App) Retry(ctx context.Context) error {
	a.engine.Flush(ctx)
	a.reportOutcome()
	return nil
}

func (a *App) reportOutcome() {
	switch a.lastStatus() {
	case "":
		printlnFn("Nothing to sync")
	case clientsync.StatusSubmitted:
		printlnFn("Application submitted. Thank you!")
	case clientsync.StatusSaved:
		printlnFn("All changes saved")
	case clientsync.StatusRejected:
		printlnFn("The server rejected the last change; review your answers and retry")
	default:
		printlnFn("Saved offline; will sync when the server is reachable")
	}
}

// MagicLink asks the server to send a session link to an email address.
func (a *App) MagicLink(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter your email", a.out)
	if err != nil {
		return err
	}
	if email == "" {
		printlnFn("No email entered")
		return nil
	}
	if err := a.gw.RequestMagicLink(ctx, email); err != nil {
		printlnFn("Magic link request failed:", err.Error())
		return err
	}
	printlnFn("Check", email, "for your sign-in link")
	return nil
}

// Token installs a session token pasted from a magic link.
func (a *App) Token(ctx context.Context) error {
	token, err := GetSecret("Paste session token", a.out)
	if err != nil {
		return err
	}
	if token == "" {
		printlnFn("No token entered")
		return nil
	}
	if err := a.session.SetToken(ctx, token); err != nil {
		printlnFn("Could not store token:", err.Error())
		return err
	}

	switch err := a.session.Revalidate(ctx); {
	case errors.Is(err, common.ErrTokenExpired):
		printlnFn("That link has expired; request a new one with 'magiclink'")
	case err != nil:
		printlnFn("Token saved; validation deferred until the server is reachable")
	default:
		printlnFn("Signed in as", a.session.Email())
		a.engine.Flush(ctx)
	}
	return nil
}

// Logout clears the session credential. Draft data is unaffected.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Clear(ctx); err != nil {
		printlnFn("Logout failed:", err.Error())
		return err
	}
	printlnFn("Session cleared")
	return nil
}
