package profile

import (
	"strings"

	"latexify/internal/types"
)

// DisplayName resolves the name shown for a user. A profile full-name
// override beats the identity provider's display name; when neither is set
// the email's local part is used.
func DisplayName(identity *types.UserIdentity, prof *types.Profile) string {
	if prof != nil {
		if name := strings.TrimSpace(prof.FullName); name != "" {
			return name
		}
	}
	if identity != nil {
		if name := strings.TrimSpace(identity.DisplayName); name != "" {
			return name
		}
		if identity.Email != "" {
			if local, _, found := strings.Cut(identity.Email, "@"); found && local != "" {
				return local
			}
			return identity.Email
		}
	}
	return ""
}
