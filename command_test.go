package courier

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestExecute_AcceptedCode(t *testing.T) {
	stream := &fakeStream{}
	stream.script("250 OK")
	tr := newTestTransport(stream)

	reply, err := tr.execute([]byte("NOOP\r\n"), 250)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if reply.Code != 250 {
		t.Errorf("expected code 250, got %d", reply.Code)
	}
	if reply.Text != "250 OK\r\n" {
		t.Errorf("unexpected reply text %q", reply.Text)
	}
	if stream.writes[0] != "NOOP\r\n" {
		t.Errorf("expected NOOP on the wire, got %q", stream.writes[0])
	}
}

func TestExecute_RejectedCode(t *testing.T) {
	stream := &fakeStream{}
	stream.script("550 5.1.1 user unknown")
	tr := newTestTransport(stream)

	_, err := tr.execute([]byte("RCPT TO:<x@example.com>\r\n"), 250, 251, 252)

	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProtocolError, got %v", err)
	}
	if pe.Code != 550 {
		t.Errorf("expected parsed code 550, got %d", pe.Code)
	}
	if pe.Text != "550 5.1.1 user unknown" {
		t.Errorf("unexpected server text %q", pe.Text)
	}
	for _, want := range []string{"250", "251", "252", "550"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err.Error(), want)
		}
	}
}

func TestExecute_NoAcceptedCodes(t *testing.T) {
	stream := &fakeStream{}
	stream.script("250 OK")
	tr := newTestTransport(stream)

	_, err := tr.execute([]byte("NOOP\r\n"))
	if !errors.Is(err, ErrNoAcceptedCodes) {
		t.Fatalf("expected ErrNoAcceptedCodes, got %v", err)
	}

	var pe *ProtocolError
	if errors.As(err, &pe) {
		t.Error("a usage error must not be a protocol error")
	}
	if len(stream.writes) != 0 {
		t.Errorf("no command should reach the wire, got %v", stream.writes)
	}
}

func TestExecute_EmptyReply(t *testing.T) {
	stream := &fakeStream{}
	stream.script("")
	tr := newTestTransport(stream)

	_, err := tr.execute([]byte("DATA\r\n"), 354)

	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProtocolError, got %v", err)
	}
	if pe.Code != 0 {
		t.Errorf("empty reply should have no code, got %d", pe.Code)
	}
	if !strings.Contains(err.Error(), "354") {
		t.Errorf("error %q should carry the accepted codes", err.Error())
	}
}

func TestExecute_MultilineReply(t *testing.T) {
	stream := &fakeStream{}
	stream.script(
		"250-mx.example.com greets you",
		"250-SIZE 35882577",
		"250 HELP",
	)
	tr := newTestTransport(stream)

	reply, err := tr.execute([]byte("HELO client.example\r\n"), 250)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	want := "250-mx.example.com greets you\r\n250-SIZE 35882577\r\n250 HELP\r\n"
	if reply.Text != want {
		t.Errorf("expected concatenated reply %q, got %q", want, reply.Text)
	}
	if reply.Code != 250 {
		t.Errorf("expected code from the first line, got %d", reply.Code)
	}
}

func TestExecute_MultilineRejectUsesFirstLineCode(t *testing.T) {
	stream := &fakeStream{}
	stream.script(
		"451-temporary failure",
		"451 try again later",
	)
	tr := newTestTransport(stream)

	_, err := tr.execute([]byte("MAIL FROM:<a@example.com>\r\n"), 250)

	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProtocolError, got %v", err)
	}
	if pe.Code != 451 {
		t.Errorf("expected code 451, got %d", pe.Code)
	}
}

func TestExecute_ReadFailure(t *testing.T) {
	stream := &fakeStream{} // empty script reads as io.EOF
	tr := newTestTransport(stream)

	_, err := tr.execute([]byte("NOOP\r\n"), 250)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected wrapped io.EOF, got %v", err)
	}

	var pe *ProtocolError
	if errors.As(err, &pe) {
		t.Error("a stream fault should not masquerade as a protocol error")
	}
}
