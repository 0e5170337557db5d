package profile

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxPhoneLength = 40
)

// AvatarFolder is the object-store prefix for avatars.
const AvatarFolder = "avatars"

// Domain errors
var (
	ErrEmptyID      = errors.New("profile ID cannot be empty")
	ErrNameTooLong  = errors.New("full name cannot exceed 100 characters")
	ErrPhoneTooLong = errors.New("phone cannot exceed 40 characters")
)

// Profile holds display details of a staff user. ID equals the account ID.
type Profile struct {
	ID        string
	FullName  string
	Phone     string
	AvatarURL string
}

// Validate checks if the Profile has valid data.
// PRE: Profile struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyID
	}
	if len(p.FullName) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(p.Phone) > MaxPhoneLength {
		return ErrPhoneTooLong
	}
	return nil
}

// AvatarObjectPath builds avatars/<userID>/<file name>.
func AvatarObjectPath(userID, fileName string) string {
	name := strings.ReplaceAll(path.Base(strings.ReplaceAll(fileName, "\\", "/")), " ", "_")
	return fmt.Sprintf("%s/%s/%s", AvatarFolder, userID, name)
}
