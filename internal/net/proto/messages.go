// Package proto defines the peer-to-peer wire messages. Every payload is a
// JSON object tagged by a short "t" discriminator; Decode maps it onto a
// closed set of message types so the channel boundary can match exhaustively
// before anything reaches the simulation.
package proto

import (
	"encoding/json"
	"fmt"

	"ringside/internal/arena"
	"ringside/internal/character"
)

// Type identifiers for the "t" discriminator.
const (
	TypeInput         = "in"
	TypeResendRequest = "req"
	TypeHello         = "hello"
	TypeStart         = "start"
)

// Message is the closed set of peer payloads.
type Message interface {
	MessageType() string
}

// Input carries one peer's input mask for one frame.
type Input struct {
	T     string `json:"t"`
	Frame uint32 `json:"f"`
	Mask  uint8  `json:"m"`
}

func (Input) MessageType() string { return TypeInput }

// ResendRequest asks the peer to retransmit every input it holds from
// Frame onward.
type ResendRequest struct {
	T     string `json:"t"`
	Frame uint32 `json:"f"`
}

func (ResendRequest) MessageType() string { return TypeResendRequest }

// Hello is the pre-match identity and character exchange sent by the joiner.
type Hello struct {
	T         string               `json:"t"`
	User      string               `json:"user"`
	Character character.Definition `json:"char"`
}

func (Hello) MessageType() string { return TypeHello }

// Start is the host-authoritative match initialization. Seed and both
// character definitions must be identical on both peers.
type Start struct {
	T      string               `json:"t"`
	Seed   int32                `json:"seed"`
	P1User string               `json:"p1User"`
	P2User string               `json:"p2User"`
	P1Char character.Definition `json:"p1Char"`
	P2Char character.Definition `json:"p2Char"`
}

func (Start) MessageType() string { return TypeStart }

// NewInput builds a tagged input message.
func NewInput(frame uint32, mask arena.InputMask) Input {
	return Input{T: TypeInput, Frame: frame, Mask: uint8(mask)}
}

// NewResendRequest builds a tagged retransmission request.
func NewResendRequest(frame uint32) ResendRequest {
	return ResendRequest{T: TypeResendRequest, Frame: frame}
}

// Encode renders any message for the wire.
func Encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", msg.MessageType(), err)
	}
	return data, nil
}

// Decode parses one wire payload into its concrete message type. Unknown
// tags and malformed payloads return an error; callers count and drop them
// without touching the simulation.
func Decode(data []byte) (Message, error) {
	var tag struct {
		T string `json:"t"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("decode message tag: %w", err)
	}

	switch tag.T {
	case TypeInput:
		var msg Input
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("decode input message: %w", err)
		}
		if arena.InputMask(msg.Mask) > arena.MaxMask {
			return nil, fmt.Errorf("input mask %#x uses undefined bits", msg.Mask)
		}
		return msg, nil
	case TypeResendRequest:
		var msg ResendRequest
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("decode resend request: %w", err)
		}
		return msg, nil
	case TypeHello:
		var msg Hello
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("decode hello message: %w", err)
		}
		return msg, nil
	case TypeStart:
		var msg Start
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("decode start message: %w", err)
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("unknown message tag %q", tag.T)
	}
}
