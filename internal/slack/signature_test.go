package slack

import (
	"strings"
	"testing"
)

func TestSign(t *testing.T) {
	body := []byte("payload=%7B%22type%22%3A%22interactive_message%22%7D")

	got := Sign("1531420618", body, "test-secret")
	want := "v0=5acc288bf8266c533b8260fe9975e2c19d404c2eb9d75c4119e370a2a9edfb56"
	if got != want {
		t.Errorf("Sign() = %s, want %s", got, want)
	}
}

func TestVerify(t *testing.T) {
	const secret = "8f742231b10e8888abcd99yyyzzz85a5"
	body := []byte("payload=%7B%22foo%22%3A%22bar%22%7D")
	timestamp := "1531420618"
	valid := Sign(timestamp, body, secret)

	tests := []struct {
		name      string
		timestamp string
		body      []byte
		signature string
		want      bool
	}{
		{
			name:      "Valid Signature",
			timestamp: timestamp,
			body:      body,
			signature: valid,
			want:      true,
		},
		{
			name:      "Missing Timestamp",
			timestamp: "",
			body:      body,
			signature: valid,
			want:      false,
		},
		{
			name:      "Missing Signature",
			timestamp: timestamp,
			body:      body,
			signature: "",
			want:      false,
		},
		{
			name:      "Empty Body",
			timestamp: timestamp,
			body:      nil,
			signature: valid,
			want:      false,
		},
		{
			name:      "Tampered Body",
			timestamp: timestamp,
			body:      append([]byte("x"), body...),
			signature: valid,
			want:      false,
		},
		{
			name:      "Tampered Signature",
			timestamp: timestamp,
			body:      body,
			signature: strings.Replace(valid, "v0=", "v1=", 1),
			want:      false,
		},
		{
			name:      "Wrong Secret",
			timestamp: timestamp,
			body:      body,
			signature: Sign(timestamp, body, "other-secret"),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Verify(tt.timestamp, tt.body, secret, tt.signature); got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerify_SingleBitFlip(t *testing.T) {
	const secret = "secret"
	body := []byte("payload=abc")
	valid := Sign("1700000000", body, secret)

	mutated := []byte(valid)
	mutated[len(mutated)-1] ^= 0x01
	if Verify("1700000000", body, secret, string(mutated)) {
		t.Error("Verify() accepted a signature with a flipped bit")
	}

	flipped := make([]byte, len(body))
	copy(flipped, body)
	flipped[0] ^= 0x01
	if Verify("1700000000", flipped, secret, valid) {
		t.Error("Verify() accepted a body with a flipped bit")
	}
}
