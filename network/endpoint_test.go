package network

import (
	"errors"
	"testing"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "127.0.0.1:9999", want: "127.0.0.1:9999"},
		{in: "10.1.2.3:5005", want: "10.1.2.3:5005"},
		{in: "[::1]:9999", want: "[::1]:9999"},
		{in: "localhost:9999", wantErr: true},
		{in: "127.0.0.1", wantErr: true},
		{in: "127.0.0.1:0", wantErr: true},
		{in: "127.0.0.1:65536", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		addr, err := ParseEndpoint(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidEndpoint) {
				t.Errorf("ParseEndpoint(%q) error = %v, want ErrInvalidEndpoint", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseEndpoint(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got := addr.String(); got != tt.want {
			t.Errorf("ParseEndpoint(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParsePort(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "9999", want: 9999},
		{in: "0", want: 0},
		{in: "65535", want: 65535},
		{in: "65536", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "abc", wantErr: true},
		{in: ":9999", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParsePort(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidPort) {
				t.Errorf("ParsePort(%q) error = %v, want ErrInvalidPort", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParsePort(%q) = %d, %v, want %d", tt.in, got, err, tt.want)
		}
	}
}
