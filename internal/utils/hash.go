package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sync"
)

// Signer computes the HMAC-SHA256 signature sent with every push and pull
// payload. It is safe for concurrent use.
type Signer struct {
	hashers sync.Pool
}

// NewSigner returns a [Signer] keyed with key, or nil when key is empty.
// A nil *Signer signs nothing.
func NewSigner(key string) *Signer {
	if key == "" {
		return nil
	}
	s := &Signer{}
	s.hashers.New = func() any {
		return hmac.New(sha256.New, []byte(key))
	}
	return s
}

// Sign returns the hex encoded signature of payload. It returns "" on a nil
// receiver.
func (s *Signer) Sign(payload []byte) string {
	if s == nil {
		return ""
	}

	h := s.hashers.Get().(hash.Hash)
	defer s.hashers.Put(h)

	h.Reset()
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
