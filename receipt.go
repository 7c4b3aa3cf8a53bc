package courier

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/tinylib/msgp/msgp"
)

// Receipt describes one accepted delivery. It is decorated with the
// protocol transcript for observability and serializes to MessagePack for
// handoff to audit or worker systems.
type Receipt struct {
	// ID is a ULID assigned by the client at acceptance time.
	ID string

	// Code is the status code of the server's final acceptance reply.
	Code int

	// ServerText is the trimmed text of the final reply, which often
	// carries the server's queue identifier.
	ServerText string

	// Transcript is the protocol exchange of the delivering connection.
	Transcript string

	// Time is the client-side acceptance timestamp.
	Time time.Time
}

func newReceipt(reply *Reply, transcript string) *Receipt {
	return &Receipt{
		ID:         ulid.Make().String(),
		Code:       reply.Code,
		ServerText: reply.TrimmedText(),
		Transcript: transcript,
		Time:       time.Now().UTC(),
	}
}

var (
	_ msgp.Marshaler   = (*Receipt)(nil)
	_ msgp.Unmarshaler = (*Receipt)(nil)
	_ msgp.Sizer       = (*Receipt)(nil)
)

// MarshalMsg implements msgp.Marshaler.
func (r *Receipt) MarshalMsg(b []byte) ([]byte, error) {
	o := msgp.Require(b, r.Msgsize())
	o = msgp.AppendMapHeader(o, 5)
	o = msgp.AppendString(o, "id")
	o = msgp.AppendString(o, r.ID)
	o = msgp.AppendString(o, "code")
	o = msgp.AppendInt(o, r.Code)
	o = msgp.AppendString(o, "server_text")
	o = msgp.AppendString(o, r.ServerText)
	o = msgp.AppendString(o, "transcript")
	o = msgp.AppendString(o, r.Transcript)
	o = msgp.AppendString(o, "time")
	o = msgp.AppendTime(o, r.Time)
	return o, nil
}

// UnmarshalMsg implements msgp.Unmarshaler.
func (r *Receipt) UnmarshalMsg(b []byte) ([]byte, error) {
	fields, o, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return b, err
	}
	for range fields {
		var key []byte
		key, o, err = msgp.ReadMapKeyZC(o)
		if err != nil {
			return b, err
		}
		switch string(key) {
		case "id":
			r.ID, o, err = msgp.ReadStringBytes(o)
		case "code":
			r.Code, o, err = msgp.ReadIntBytes(o)
		case "server_text":
			r.ServerText, o, err = msgp.ReadStringBytes(o)
		case "transcript":
			r.Transcript, o, err = msgp.ReadStringBytes(o)
		case "time":
			r.Time, o, err = msgp.ReadTimeBytes(o)
		default:
			o, err = msgp.Skip(o)
		}
		if err != nil {
			return b, err
		}
	}
	return o, nil
}

// Msgsize implements msgp.Sizer, returning an upper bound on the encoded
// size.
func (r *Receipt) Msgsize() int {
	return msgp.MapHeaderSize +
		msgp.StringPrefixSize + 2 + msgp.StringPrefixSize + len(r.ID) +
		msgp.StringPrefixSize + 4 + msgp.IntSize +
		msgp.StringPrefixSize + 11 + msgp.StringPrefixSize + len(r.ServerText) +
		msgp.StringPrefixSize + 10 + msgp.StringPrefixSize + len(r.Transcript) +
		msgp.StringPrefixSize + 4 + msgp.TimeSize
}
