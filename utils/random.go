package utils

import (
	"crypto/rand"
	"fmt"
	"time"
)

// tempPasswordCharset excludes characters that read ambiguously in email
// clients (0/O, 1/l/I).
const tempPasswordCharset = "ABCDEFGHJKMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"

// GenerateTempPassword returns a random password of the given length drawn
// from the unambiguous alphanumeric charset.
func GenerateTempPassword(length int) (string, error) {
	code := make([]byte, length)

	if _, err := rand.Read(code); err != nil {
		return "", err
	}

	for i := 0; i < length; i++ {
		code[i] = tempPasswordCharset[int(code[i])%len(tempPasswordCharset)]
	}

	return string(code), nil
}

const idSuffixCharset = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewQueueEntryID builds an opaque entry identifier of the form
// queue_<unix ms>_<random suffix>.
func NewQueueEntryID() string {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand failing is unrecoverable for id generation
		panic(err)
	}

	for i := range suffix {
		suffix[i] = idSuffixCharset[int(suffix[i])%len(idSuffixCharset)]
	}

	return fmt.Sprintf("queue_%d_%s", time.Now().UnixMilli(), suffix)
}
