// Package tokencodec packs an OAuth token bundle into a short text value that fits in a cookie.
//
// The bundle is renamed to single-letter keys, JSON encoded, zlib deflated and base64 encoded.
package tokencodec

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Haazy99/AgencyTest2/lib/myerrors"
)

type Bundle struct {
	AccessToken     string `json:"accessToken"`
	RefreshToken    string `json:"refreshToken"`
	TokenType       string `json:"tokenType"`
	ExpiresIn       int64  `json:"expiresIn"`
	ExpiryTimestamp int64  `json:"expiryTimestamp"`
}

type compactBundle struct {
	A string `json:"a"`
	R string `json:"r"`
	T string `json:"t"`
	E int64  `json:"e"`
	X *int64 `json:"x"`
}

// upper bound for an inflated bundle; anything larger is not a token
const maxInflatedSize = 64 << 10

func Compress(b Bundle) (string, error) {
	if b.AccessToken == "" {
		return "", myerrors.NewCodecError(fmt.Errorf("cannot compress bundle without access token"))
	}

	expiry := b.ExpiryTimestamp
	jsonPayload, err := json.Marshal(compactBundle{
		A: b.AccessToken,
		R: b.RefreshToken,
		T: b.TokenType,
		E: b.ExpiresIn,
		X: &expiry,
	})
	if err != nil {
		return "", myerrors.NewCodecError(fmt.Errorf("error marshalling token bundle: %w", err))
	}

	buf := &bytes.Buffer{}
	w, err := zlib.NewWriterLevel(buf, zlib.BestCompression)
	if err != nil {
		return "", myerrors.NewCodecError(err)
	}
	_, err = w.Write(jsonPayload)
	if err != nil {
		return "", myerrors.NewCodecError(fmt.Errorf("error deflating token bundle: %w", err))
	}
	err = w.Close()
	if err != nil {
		return "", myerrors.NewCodecError(fmt.Errorf("error deflating token bundle: %w", err))
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func Decompress(encoded string) (Bundle, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Bundle{}, myerrors.NewCodecError(fmt.Errorf("error decoding token data: %w", err))
	}

	r, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return Bundle{}, myerrors.NewCodecError(fmt.Errorf("error inflating token data: %w", err))
	}
	defer r.Close()

	inflated, err := io.ReadAll(io.LimitReader(r, maxInflatedSize+1))
	if err != nil {
		return Bundle{}, myerrors.NewCodecError(fmt.Errorf("error inflating token data: %w", err))
	}
	if len(inflated) > maxInflatedSize {
		return Bundle{}, myerrors.NewCodecError(fmt.Errorf("token data exceeds %d bytes", maxInflatedSize))
	}

	compact := compactBundle{}
	err = json.Unmarshal(inflated, &compact)
	if err != nil {
		return Bundle{}, myerrors.NewCodecError(fmt.Errorf("error parsing token data: %w", err))
	}
	if compact.A == "" || compact.X == nil {
		return Bundle{}, myerrors.NewCodecError(fmt.Errorf("token data misses access token or expiry"))
	}

	return Bundle{
		AccessToken:     compact.A,
		RefreshToken:    compact.R,
		TokenType:       compact.T,
		ExpiresIn:       compact.E,
		ExpiryTimestamp: *compact.X,
	}, nil
}
