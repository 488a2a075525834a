package telegram

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

// TerminalAuth implements gotd's auth.UserAuthenticator by prompting on a
// terminal. Answers are read line by line from In.
type TerminalAuth struct {
	PhoneNumber string
	In          io.Reader
	Out         io.Writer

	lines *bufio.Scanner
}

func NewTerminalAuth(phone string, in io.Reader, out io.Writer) *TerminalAuth {
	return &TerminalAuth{PhoneNumber: phone, In: in, Out: out}
}

func (a *TerminalAuth) Phone(ctx context.Context) (string, error) {
	if a.PhoneNumber != "" {
		return a.PhoneNumber, nil
	}
	return a.ask(ctx, "Phone number (international format): ")
}

func (a *TerminalAuth) Code(ctx context.Context, sentCode *tg.AuthSentCode) (string, error) {
	return a.ask(ctx, "Login code: ")
}

func (a *TerminalAuth) Password(ctx context.Context) (string, error) {
	return a.ask(ctx, "Two-step verification password: ")
}

func (a *TerminalAuth) AcceptTermsOfService(ctx context.Context, tos tg.HelpTermsOfService) error {
	return &auth.SignUpRequired{TermsOfService: tos}
}

func (a *TerminalAuth) SignUp(ctx context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("sign up not supported")
}

// ask prints prompt and returns the next non-empty line.
func (a *TerminalAuth) ask(ctx context.Context, prompt string) (string, error) {
	if a.lines == nil {
		a.lines = bufio.NewScanner(a.In)
	}
	type answer struct {
		text string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		fmt.Fprint(a.Out, prompt)
		for a.lines.Scan() {
			if text := strings.TrimSpace(a.lines.Text()); text != "" {
				ch <- answer{text: text}
				return
			}
		}
		err := a.lines.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		ch <- answer{err: err}
	}()

	select {
	case ans := <-ch:
		return ans.text, ans.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
