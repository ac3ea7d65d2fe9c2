// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package email sends compressed PDFs as mail attachments over SMTP.
// Implements: prd003-email-dispatch (R1-R3);
//
//	docs/ARCHITECTURE § Email Dispatch.
package email

import (
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"

	"github.com/pdiddy/pdfebc-cli/pkg/types"
)

// DefaultSubject is the subject line for outgoing messages.
const DefaultSubject = "PDF files from pdfebc"

// AuthError reports an SMTP authentication rejection. It carries the server
// status code and message so the user-facing guidance can show both.
type AuthError struct {
	Code int
	Msg  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("smtp authentication failed: %d %s", e.Code, e.Msg)
}

// sendFunc matches smtp.SendMail. Tests substitute it so nothing dials.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Sender mails files using a preconfigured SMTP account.
type Sender struct {
	cfg  types.EmailConfig
	send sendFunc
}

// NewSender returns a Sender for the given account. The password in cfg must
// already be resolved to plain text.
func NewSender(cfg types.EmailConfig) *Sender {
	return &Sender{cfg: cfg, send: smtp.SendMail}
}

// Send mails the named files as attachments of a single message. STARTTLS is
// negotiated by net/smtp when the server advertises it.
func (s *Sender) Send(paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no files to send")
	}

	msg, err := BuildMessage(s.cfg.User, s.cfg.Receiver, DefaultSubject, paths)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.SMTPServer, strconv.Itoa(s.cfg.SMTPPort))
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.SMTPServer)
	if err := s.send(addr, auth, s.cfg.User, []string{s.cfg.Receiver}, msg); err != nil {
		return classify(err)
	}
	return nil
}

// classify surfaces authentication rejections as AuthError. The RFC 4954
// reply codes 530, 534, 535, and 538 all mean the credentials were not
// accepted.
func classify(err error) error {
	var proto *textproto.Error
	if errors.As(err, &proto) {
		switch proto.Code {
		case 530, 534, 535, 538:
			return &AuthError{Code: proto.Code, Msg: proto.Msg}
		}
	}
	return fmt.Errorf("sending mail: %w", err)
}
