// Package mysession keeps small session objects in a sealed browser cookie.
//
// Values are sealed with XChaCha20-Poly1305 under a key derived from the
// configured secret, so a cookie cannot be read or altered client-side.
package mysession

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
)

const (
	MinSecretLength = 32
	keyInfo         = "ghl-session-cookie-v1"
)

var ErrInvalidCookie = errors.New("session cookie cannot be opened")

type Options struct {
	Name   string
	Secret string
	MaxAge time.Duration
	Secure bool
}

type CookieCodec struct {
	name   string
	maxAge time.Duration
	secure bool
	aead   cipher.AEAD
}

func NewCookieCodec(opts Options) (*CookieCodec, error) {
	if opts.Name == "" {
		return nil, myerrors.NewSessionError(fmt.Errorf("session cookie name is empty"))
	}
	if len(opts.Secret) < MinSecretLength {
		return nil, myerrors.NewSessionError(fmt.Errorf("session secret must be at least %d characters", MinSecretLength))
	}

	key := make([]byte, chacha20poly1305.KeySize)
	_, err := io.ReadFull(hkdf.New(sha256.New, []byte(opts.Secret), nil, []byte(keyInfo)), key)
	if err != nil {
		return nil, myerrors.NewSessionError(fmt.Errorf("error deriving session key: %w", err))
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, myerrors.NewSessionError(fmt.Errorf("error creating session cipher: %w", err))
	}

	return &CookieCodec{
		name:   opts.Name,
		maxAge: opts.MaxAge,
		secure: opts.Secure,
		aead:   aead,
	}, nil
}

func (cc *CookieCodec) Name() string {
	return cc.name
}

func (cc *CookieCodec) Seal(plaintext []byte) (string, error) {
	nonce := make([]byte, cc.aead.NonceSize(), cc.aead.NonceSize()+len(plaintext)+cc.aead.Overhead())
	_, err := rand.Read(nonce)
	if err != nil {
		return "", myerrors.NewSessionError(fmt.Errorf("error creating nonce: %w", err))
	}
	sealed := cc.aead.Seal(nonce, nonce, plaintext, []byte(cc.name))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (cc *CookieCodec) Open(value string) ([]byte, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, ErrInvalidCookie
	}
	if len(sealed) < cc.aead.NonceSize()+cc.aead.Overhead() {
		return nil, ErrInvalidCookie
	}
	nonce, ciphertext := sealed[:cc.aead.NonceSize()], sealed[cc.aead.NonceSize():]
	plaintext, err := cc.aead.Open(nil, nonce, ciphertext, []byte(cc.name))
	if err != nil {
		return nil, ErrInvalidCookie
	}
	return plaintext, nil
}

// SealedLen is the exact cookie value length for a plaintext of n bytes.
func (cc *CookieCodec) SealedLen(n int) int {
	return base64.RawURLEncoding.EncodedLen(cc.aead.NonceSize() + n + cc.aead.Overhead())
}

// Read decodes the session cookie into dst. It reports false when no cookie is present.
// A cookie that does not open yields ErrInvalidCookie.
func (cc *CookieCodec) Read(r *http.Request, dst any) (bool, error) {
	cookie, err := r.Cookie(cc.name)
	if err != nil {
		return false, nil
	}
	plaintext, err := cc.Open(cookie.Value)
	if err != nil {
		return false, err
	}
	err = json.Unmarshal(plaintext, dst)
	if err != nil {
		return false, ErrInvalidCookie
	}
	return true, nil
}

// Write seals src into the response, replacing a cookie of the same name set earlier in this response.
func (cc *CookieCodec) Write(w http.ResponseWriter, src any) error {
	plaintext, err := json.Marshal(src)
	if err != nil {
		return myerrors.NewSessionError(fmt.Errorf("error marshalling session: %w", err))
	}
	value, err := cc.Seal(plaintext)
	if err != nil {
		return err
	}

	prefix := cc.name + "="
	header := w.Header()
	kept := []string{}
	for _, line := range header.Values("Set-Cookie") {
		if !strings.HasPrefix(line, prefix) {
			kept = append(kept, line)
		}
	}
	header.Del("Set-Cookie")
	for _, line := range kept {
		header.Add("Set-Cookie", line)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cc.name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cc.maxAge.Seconds()),
		Expires:  time.Now().Add(cc.maxAge),
		HttpOnly: true,
		Secure:   cc.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
