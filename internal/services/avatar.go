package services

import (
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/hchm/symphony/internal/models"
)

// UserAnnotator enriches a user record with display-ready derived fields.
type UserAnnotator interface {
	FillThumbnailURL(user *models.User)
}

// AvatarFiller derives a gravatar-style thumbnail URL from the user's email.
// The annotation is deterministic and idempotent; it never touches storage.
type AvatarFiller struct {
	baseURL string
	size    int
}

// NewAvatarFiller creates an AvatarFiller. baseURL defaults to gravatar when empty.
func NewAvatarFiller(baseURL string) *AvatarFiller {
	if baseURL == "" {
		baseURL = "https://www.gravatar.com"
	}
	return &AvatarFiller{baseURL: strings.TrimRight(baseURL, "/"), size: 80}
}

// FillThumbnailURL sets user.AvatarURL from the md5 of the normalized email.
func (f *AvatarFiller) FillThumbnailURL(user *models.User) {
	if user == nil {
		return
	}
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(user.Email))))
	user.AvatarURL = fmt.Sprintf("%s/avatar/%x?s=%d&d=identicon", f.baseURL, sum, f.size)
}

// Ensure interface is satisfied at compile time.
var _ UserAnnotator = (*AvatarFiller)(nil)
