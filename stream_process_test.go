package courier

import (
	"strings"
	"testing"
)

func TestProcessStream_Exchange(t *testing.T) {
	stream := &ProcessStream{
		Command: `printf '220 local sendmail\r\n250 ok\r\n'; cat >/dev/null`,
	}

	if err := stream.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	defer stream.Terminate()

	greeting, err := stream.ReadLine()
	if err != nil {
		t.Fatalf("read greeting failed: %v", err)
	}
	if greeting != "220 local sendmail" {
		t.Errorf("unexpected greeting %q", greeting)
	}

	if err := stream.Write([]byte("HELO [127.0.0.1]\r\n"), true); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	reply, err := stream.ReadLine()
	if err != nil {
		t.Fatalf("read reply failed: %v", err)
	}
	if reply != "250 ok" {
		t.Errorf("unexpected reply %q", reply)
	}

	if !strings.Contains(stream.Transcript(), "C: HELO [127.0.0.1]") {
		t.Errorf("transcript missing command:\n%s", stream.Transcript())
	}
}

func TestProcessStream_TerminateBeforeInitialize(t *testing.T) {
	stream := &ProcessStream{}
	if err := stream.Terminate(); err != nil {
		t.Errorf("terminating an unspawned stream should be a no-op, got %v", err)
	}
}

func TestProcessStream_FallbackIdentity(t *testing.T) {
	tr := newTestTransport(&ProcessStream{})
	if got := tr.String(); got != "smtp://sendmail" {
		t.Errorf("expected sendmail identity, got %q", got)
	}
}
