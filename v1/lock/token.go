package lock

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

const tokenPrefix = "_LOCK:"

// newToken mints the ownership token for one claim attempt: 128 bits of
// entropy prefixed with the lock key. The token is the sole proof of
// ownership; the embedded key exists for diagnostics and LockName only and
// carries no authority of its own.
func newToken(key string) string {
	id := uuid.New()
	return tokenPrefix + key + ":" + hex.EncodeToString(id[:])
}

// LockName reports the lock key a token was minted for, or "" if the value
// is not a dislock token.
func LockName(token string) string {
	rest, ok := strings.CutPrefix(token, tokenPrefix)
	if !ok {
		return ""
	}
	i := strings.LastIndexByte(rest, ':')
	if i < 0 {
		return ""
	}
	return rest[:i]
}
