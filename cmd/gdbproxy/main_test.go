package main

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestValidateHostPort(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{name: "host and port", addr: "localhost:1234", wantErr: false},
		{name: "bare IP and port", addr: "127.0.0.1:4444", wantErr: false},
		{name: "missing port", addr: "localhost", wantErr: true},
		{name: "empty", addr: "", wantErr: true},
		{name: "trailing colon", addr: "localhost:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateHostPort(tt.addr)
			if tt.wantErr {
				assert.Assert(t, err != nil)
			} else {
				assert.NilError(t, err)
			}
		})
	}
}
