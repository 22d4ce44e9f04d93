package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"testing"
)

func TestSHA256Writer(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "simple content",
			content:  "hello world",
			expected: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
		{
			name:     "empty stream",
			content:  "",
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:    "multiline content",
			content: "line1\nline2\nline3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected := tt.expected
			if expected == "" {
				sum := sha256.Sum256([]byte(tt.content))
				expected = hex.EncodeToString(sum[:])
			}

			var out bytes.Buffer

			sha256Writer := NewSHA256Writer(&out)

			_, err := io.Copy(sha256Writer, strings.NewReader(tt.content))
			if err != nil {
				t.Fatalf("copy error = %v", err)
			}

			if got := sha256Writer.Sum(); got != expected {
				t.Errorf("Sum() = %v, want %v", got, expected)
			}

			if out.String() != tt.content {
				t.Errorf("expected passthrough %q, got %q", tt.content, out.String())
			}
		})
	}
}

func TestSHA256Writer_ChunkedWrites(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 5000)
	sum := sha256.Sum256(data)

	sha256Writer := NewSHA256Writer(io.Discard)

	for offset := 0; offset < len(data); offset += 777 {
		end := min(offset+777, len(data))

		_, err := sha256Writer.Write(data[offset:end])
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	if got := sha256Writer.Sum(); got != hex.EncodeToString(sum[:]) {
		t.Errorf("expected %x, got %s", sum, got)
	}
}
