package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"dzine-mind/internal/attachment"
	"dzine-mind/internal/domain"
	"dzine-mind/internal/media"
	"dzine-mind/internal/modes"
	"dzine-mind/internal/usecase"
)

type chatSession interface {
	Submit(ctx context.Context, text string, att *domain.Attachment) (usecase.Outcome, error)
	SetMode(m domain.Mode) error
	Mode() domain.Mode
	Turns() []domain.Turn
}

// repl is the terminal composer: an input buffer, at most one staged
// attachment, and the session it submits to.
type repl struct {
	session chatSession
	in      io.Reader
	out     io.Writer

	composer *media.InputBuffer
	staged   *domain.Attachment
}

func newREPL(s chatSession, in io.Reader, out io.Writer) *repl {
	return &repl{session: s, in: in, out: out, composer: &media.InputBuffer{}}
}

const helpText = `commands:
  /mode <name>       switch mode (critic, creative, advisor, trends)
  /attach <path>     stage a file for the next message
  /capture <path>    stage a downscaled still of an image
  /dictate <path>    append transcribed lines to the composer
  /send              submit the composer and staged attachment
  /history           print the conversation
  /quit              leave`

func (r *repl) run(ctx context.Context) error {
	sc := bufio.NewScanner(r.in)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprintf(r.out, "[%s] > ", r.session.Mode())
		if !sc.Scan() {
			fmt.Fprintln(r.out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			r.composer.Append(line)
			r.send(ctx)
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		var err error
		switch cmd {
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(r.out, helpText)
		case "/mode":
			err = r.setMode(arg)
		case "/attach":
			err = r.attachFile(arg)
		case "/capture":
			err = r.captureFile(ctx, arg)
		case "/dictate":
			err = r.dictateFile(ctx, arg)
		case "/send":
			r.send(ctx)
		case "/history":
			r.printHistory()
		default:
			err = fmt.Errorf("unknown command %s", cmd)
		}
		if err != nil {
			fmt.Fprintf(r.out, "! %v\n", err)
		}
	}
}

func (r *repl) setMode(name string) error {
	m, err := modes.Parse(name)
	if err != nil {
		return err
	}
	if err := r.session.SetMode(m); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "mode: %s\n", modes.Describe(m).Label)
	return nil
}

func (r *repl) attachFile(path string) error {
	if path == "" {
		return errors.New("usage: /attach <path>")
	}
	a, err := attachment.ReadFile(path)
	if err != nil {
		return err
	}
	r.stage(a)
	return nil
}

func (r *repl) captureFile(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("usage: /capture <path>")
	}
	a, err := media.CaptureStill(ctx, media.FileCamera{Path: path}, media.CaptureOptions{})
	if err != nil {
		return err
	}
	r.stage(a)
	return nil
}

func (r *repl) dictateFile(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("usage: /dictate <path>")
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	d := media.NewDictation(r.composer)
	if err := d.Start(ctx, media.ReaderTranscriber{R: f}); err != nil {
		return err
	}
	// Recognition ends when the file is exhausted.
	d.Wait(ctx)
	d.Stop()
	fmt.Fprintf(r.out, "composer: %s\n", r.composer.Text())
	return nil
}

func (r *repl) stage(a domain.Attachment) {
	r.staged = &a
	fmt.Fprintf(r.out, "staged %s (%d bytes encoded)\n", a.MIMEType, len(a.Data))
}

func (r *repl) send(ctx context.Context) {
	text := r.composer.Text()
	out, err := r.session.Submit(ctx, text, r.staged)
	if err != nil {
		fmt.Fprintf(r.out, "! %v\n", err)
		return
	}
	r.composer.Take()
	r.staged = nil
	r.printTurn(out.Reply)
}

func (r *repl) printHistory() {
	for _, t := range r.session.Turns() {
		r.printTurn(t)
	}
}

func (r *repl) printTurn(t domain.Turn) {
	who := "you"
	if t.Speaker == domain.SpeakerAssistant {
		who = "dzine"
	}
	fmt.Fprintf(r.out, "%s: %s\n", who, t.Text)
	if t.Attachment != nil {
		fmt.Fprintf(r.out, "   [%s attachment, %d bytes encoded]\n", t.Attachment.MIMEType, len(t.Attachment.Data))
	}
}
