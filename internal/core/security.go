// AngelaMos | 2026
// security.go

package core

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

// PasswordParams are the argon2id cost settings new hashes are written with.
type PasswordParams struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

var DefaultPasswordParams = PasswordParams{
	Memory:  64 * 1024,
	Time:    1,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

var errMalformedHash = errors.New("malformed password hash")

// passwordHash is the decoded form of
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>.
type passwordHash struct {
	params PasswordParams
	salt   []byte
	key    []byte
}

func (h passwordHash) String() string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key),
	)
}

func (h passwordHash) derive(password string) []byte {
	return argon2.IDKey(
		[]byte(password),
		h.salt,
		h.params.Time,
		h.params.Memory,
		h.params.Threads,
		h.params.KeyLen,
	)
}

func parsePasswordHash(encoded string) (passwordHash, error) {
	var h passwordHash

	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" {
		return h, errMalformedHash
	}
	if fields[1] != "argon2id" {
		return h, fmt.Errorf("%w: algorithm %q", errMalformedHash, fields[1])
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil ||
		version != argon2.Version {
		return h, fmt.Errorf("%w: version %q", errMalformedHash, fields[2])
	}

	if _, err := fmt.Sscanf(
		fields[3],
		"m=%d,t=%d,p=%d",
		&h.params.Memory,
		&h.params.Time,
		&h.params.Threads,
	); err != nil {
		return h, fmt.Errorf("%w: params: %w", errMalformedHash, err)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return h, fmt.Errorf("%w: salt: %w", errMalformedHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil {
		return h, fmt.Errorf("%w: key: %w", errMalformedHash, err)
	}

	//nolint:gosec // G115: argon2 keys are a few dozen bytes
	h.params.KeyLen = uint32(len(h.key))
	h.params.SaltLen = len(h.salt)

	return h, nil
}

// HashPassword encodes password with DefaultPasswordParams.
func HashPassword(password string) (string, error) {
	h := passwordHash{params: DefaultPasswordParams}
	h.salt = make([]byte, h.params.SaltLen)
	if _, err := rand.Read(h.salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	h.key = h.derive(password)
	return h.String(), nil
}

func VerifyPassword(password, encoded string) (bool, error) {
	h, err := parsePasswordHash(encoded)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(h.key, h.derive(password)) == 1, nil
}

// VerifyPasswordWithRehash also returns a replacement hash when the stored
// one was written with weaker parameters than DefaultPasswordParams. The
// replacement is empty when no upgrade is needed.
func VerifyPasswordWithRehash(
	password, encoded string,
) (bool, string, error) {
	valid, err := VerifyPassword(password, encoded)
	if err != nil || !valid {
		return false, "", err
	}

	if !needsRehash(encoded) {
		return true, "", nil
	}

	upgraded, err := HashPassword(password)
	if err != nil {
		//nolint:nilerr // the password matched; the upgrade can wait
		return true, "", nil
	}
	return true, upgraded, nil
}

var decoyHash = sync.OnceValue(func() string {
	h, err := HashPassword("neighborly-decoy-password")
	if err != nil {
		panic(fmt.Sprintf("security: decoy hash: %v", err))
	}
	return h
})

// VerifyPasswordTimingSafe spends the same argon2 work whether or not the
// account exists. A nil or empty stored hash never verifies.
func VerifyPasswordTimingSafe(
	password string,
	encoded *string,
) (bool, string, error) {
	if encoded == nil || *encoded == "" {
		_, _ = VerifyPassword(password, decoyHash()) //nolint:errcheck // decoy
		return false, "", nil
	}

	return VerifyPasswordWithRehash(password, *encoded)
}

func needsRehash(encoded string) bool {
	h, err := parsePasswordHash(encoded)
	if err != nil {
		return true
	}

	want := DefaultPasswordParams
	return h.params.Memory != want.Memory ||
		h.params.Time != want.Time ||
		h.params.Threads != want.Threads ||
		h.params.KeyLen != want.KeyLen
}

// GenerateSecureToken returns length random bytes, URL-safe base64 encoded.
func GenerateSecureToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// SignHMACSHA256 returns the lowercase hex HMAC-SHA256 of message.
func SignHMACSHA256(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMACSHA256 compares a hex signature against the expected HMAC in
// constant time. Case of the supplied hex is ignored.
func VerifyHMACSHA256(secret, message, signature string) bool {
	expected := SignHMACSHA256(secret, message)
	got := strings.ToLower(strings.TrimSpace(signature))
	return hmac.Equal([]byte(expected), []byte(got))
}
