package main

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// SHA256Writer wraps a writer and computes SHA256 hash of written data.
type SHA256Writer struct {
	writer io.Writer
	hash   hash.Hash
}

// NewSHA256Writer creates a new SHA256Writer.
func NewSHA256Writer(w io.Writer) *SHA256Writer {
	h := sha256.New()

	return &SHA256Writer{
		writer: io.MultiWriter(w, h),
		hash:   h,
	}
}

// Write implements io.Writer.
func (sha256Writer *SHA256Writer) Write(p []byte) (int, error) {
	return sha256Writer.writer.Write(p)
}

// Sum returns the hex-encoded SHA256 hash of all written data.
func (sha256Writer *SHA256Writer) Sum() string {
	return hex.EncodeToString(sha256Writer.hash.Sum(nil))
}
