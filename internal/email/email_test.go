package email

import (
	"encoding/base64"
	"errors"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfebc-cli/pkg/types"
)

func testConfig() types.EmailConfig {
	return types.EmailConfig{
		User:       "sender@example.com",
		Receiver:   "reader@example.com",
		Password:   "hunter2",
		SMTPServer: "smtp.example.com",
		SMTPPort:   587,
	}
}

func writeAttachment(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSendDeliversMessage(t *testing.T) {
	dir := t.TempDir()
	a := writeAttachment(t, dir, "a.pdf", "pdf bytes a")
	b := writeAttachment(t, dir, "b.pdf", "pdf bytes b")

	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  []byte
	)
	s := NewSender(testConfig())
	s.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		assert.NotNil(t, auth)
		return nil
	}

	require.NoError(t, s.Send([]string{a, b}))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "sender@example.com", gotFrom)
	assert.Equal(t, []string{"reader@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "From: sender@example.com\r\n")
	assert.Contains(t, msg, "To: reader@example.com\r\n")
	assert.Contains(t, msg, "Subject: PDF files from pdfebc\r\n")
	assert.Contains(t, msg, "multipart/mixed")
	assert.Contains(t, msg, "Attached files: a.pdf, b.pdf")
	assert.Contains(t, msg, `filename="a.pdf"`)
	assert.Contains(t, msg, `filename="b.pdf"`)
	assert.Contains(t, msg, base64.StdEncoding.EncodeToString([]byte("pdf bytes a")))
}

func TestSendNoFiles(t *testing.T) {
	called := false
	s := NewSender(testConfig())
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	err := s.Send(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files to send")
	assert.False(t, called, "nothing should be sent for an empty file list")
}

func TestSendAuthRejection(t *testing.T) {
	dir := t.TempDir()
	a := writeAttachment(t, dir, "a.pdf", "pdf bytes")

	s := NewSender(testConfig())
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		return &textproto.Error{Code: 535, Msg: "5.7.8 Username and Password not accepted"}
	}

	err := s.Send([]string{a})
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 535, authErr.Code)
	assert.Contains(t, authErr.Msg, "not accepted")
}

func TestSendOtherFailure(t *testing.T) {
	dir := t.TempDir()
	a := writeAttachment(t, dir, "a.pdf", "pdf bytes")

	s := NewSender(testConfig())
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := s.Send([]string{a})
	require.Error(t, err)

	var authErr *AuthError
	assert.False(t, errors.As(err, &authErr), "transport failure is not an auth error")
	assert.Contains(t, err.Error(), "sending mail")
}

func TestClassifyAuthCodes(t *testing.T) {
	for _, code := range []int{530, 534, 535, 538} {
		err := classify(&textproto.Error{Code: code, Msg: "no"})
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr, "code %d", code)
		assert.Equal(t, code, authErr.Code)
	}

	err := classify(&textproto.Error{Code: 550, Msg: "mailbox unavailable"})
	var authErr *AuthError
	assert.False(t, errors.As(err, &authErr), "550 is not an auth rejection")
}

func TestBuildMessageMissingAttachment(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.pdf")
	_, err := BuildMessage("a@example.com", "b@example.com", "subject", []string{missing})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone.pdf")
}

// base64Line matches a line of encoded attachment content.
var base64Line = regexp.MustCompile(`^[A-Za-z0-9+/]+=*$`)

func TestBuildMessageWrapsBase64(t *testing.T) {
	dir := t.TempDir()
	big := writeAttachment(t, dir, "big.pdf", strings.Repeat("pdfebc", 500))

	msg, err := BuildMessage("a@example.com", "b@example.com", "subject", []string{big})
	require.NoError(t, err)

	var encoded int
	for _, line := range strings.Split(string(msg), "\r\n") {
		if !base64Line.MatchString(line) {
			continue
		}
		encoded++
		assert.LessOrEqual(t, len(line), 76, "encoded line %q exceeds 76 columns", line)
	}
	assert.Greater(t, encoded, 1, "a 3000-byte attachment should wrap across lines")
}
