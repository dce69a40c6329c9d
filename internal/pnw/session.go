package pnw

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/xonecas/pnw-recruiter/internal/constants"
)

// ErrSessionClosed is returned when a closed session is used.
var ErrSessionClosed = errors.New("session closed")

// Message is one in-game message.
type Message struct {
	Receiver string
	Subject  string
	Body     string
}

// Session is a cookie-carrying web session. It is created and closed by a single round.
type Session struct {
	client *Client
	http   *http.Client
	jar    *cookiejar.Jar
	closed bool
}

// Login posts the credentials to the login form. The response is not inspected,
// so a nil error only means the request went through; see Authenticated.
func (s *Session) Login(ctx context.Context, email, password string) error {
	if s.closed {
		return ErrSessionClosed
	}

	form := url.Values{
		"email":     {email},
		"password":  {password},
		"loginform": {constants.LoginFormValue},
	}

	resp, err := s.client.postForm(ctx, s.http, s.client.loginURL, form)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	drain(resp)
	return nil
}

// Authenticated reports whether the game has set any cookie for this session.
// It is a hint, not a verification: the game also sets cookies on failed logins.
func (s *Session) Authenticated() bool {
	u, err := url.Parse(s.client.loginURL)
	if err != nil {
		return false
	}
	return len(s.jar.Cookies(u)) > 0
}

// SendMessage starts a new conversation with msg.Receiver.
// Transport errors and HTTP error statuses are failures.
func (s *Session) SendMessage(ctx context.Context, msg Message) error {
	if s.closed {
		return ErrSessionClosed
	}

	form := url.Values{
		"newconversation": {"true"},
		"receiver":        {msg.Receiver},
		"carboncopy":      {""},
		"subject":         {msg.Subject},
		"body":            {msg.Body},
		"sndmsg":          {constants.SendMessageValue},
	}

	resp, err := s.client.postForm(ctx, s.http, s.client.msgURL, form)
	if err != nil {
		return fmt.Errorf("send message to %s: %w", msg.Receiver, err)
	}
	defer drain(resp)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("send message to %s: http error %d", msg.Receiver, resp.StatusCode)
	}
	return nil
}

// Close invalidates the session and releases its idle connections.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.http.CloseIdleConnections()
	s.http.Jar = nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
}
