package security

import (
	"errors"
	"testing"
)

func TestValidateCDPEndpoint(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr error // nil means no error is expected
	}{
		{name: "empty", input: "", wantErr: ErrEmptyEndpoint},
		{name: "loopback ws", input: "ws://127.0.0.1:9222/devtools/browser/abc"},
		{name: "loopback http", input: "http://localhost:9222"},
		{name: "private lan wss", input: "wss://192.168.1.50:9222/devtools/browser/abc"},
		{name: "blocked scheme file", input: "file:///etc/passwd", wantErr: ErrBlockedScheme},
		{name: "blocked scheme javascript", input: "javascript:alert(1)", wantErr: ErrBlockedScheme},
		{name: "no host", input: "ws:///devtools/browser/abc", wantErr: ErrEmptyHost},
		{name: "malformed url", input: "ht!tp://[::1", wantErr: ErrInvalidEndpoint},
		{name: "ascii hostname", input: "ws://driver-host:9222/devtools/browser/abc"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCDPEndpoint(tc.input)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateCDPEndpoint(%q) = %v, want nil", tc.input, err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ValidateCDPEndpoint(%q) = %v, want wrapping %v", tc.input, err, tc.wantErr)
			}
		})
	}
}

func TestValidateCDPEndpointRejectsDisallowedIDNHostname(t *testing.T) {
	// U+1F600 (grinning face) has the IDNA2008 "disallowed" status, so
	// strict ToASCII conversion fails and the endpoint is rejected
	// before ever being dialed.
	err := ValidateCDPEndpoint("ws://\U0001F600.example:9222")
	if !errors.Is(err, ErrInvalidIDN) {
		t.Fatalf("expected ErrInvalidIDN, got %v", err)
	}
}
