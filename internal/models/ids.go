package models

import (
	"strings"

	"github.com/google/uuid"
)

// idNamespace scopes the name-based ids generated for report entries
var idNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("finplan"))

// StableID derives a repeatable id from its parts, so the same analysis
// always yields the same conflict and recommendation ids.
func StableID(parts ...string) string {
	return uuid.NewSHA1(idNamespace, []byte(strings.Join(parts, ":"))).String()
}

// NewID returns a random id for caller-created records such as profiles
func NewID() string {
	return uuid.New().String()
}
