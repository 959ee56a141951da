package profile

import (
	"testing"

	"latexify/internal/types"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		identity *types.UserIdentity
		profile  *types.Profile
		want     string
	}{
		{
			name:     "profile full name wins",
			identity: &types.UserIdentity{DisplayName: "Provider Name", Email: "a@b.com"},
			profile:  &types.Profile{FullName: "Override Name"},
			want:     "Override Name",
		},
		{
			name:     "blank profile name falls through",
			identity: &types.UserIdentity{DisplayName: "Provider Name"},
			profile:  &types.Profile{FullName: "   "},
			want:     "Provider Name",
		},
		{
			name:     "identity display name",
			identity: &types.UserIdentity{DisplayName: "Provider Name", Email: "a@b.com"},
			want:     "Provider Name",
		},
		{
			name:     "email local part",
			identity: &types.UserIdentity{Email: "jordan@example.com"},
			want:     "jordan",
		},
		{
			name:     "email without at sign",
			identity: &types.UserIdentity{Email: "not-an-email"},
			want:     "not-an-email",
		},
		{
			name: "nothing available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName(tt.identity, tt.profile); got != tt.want {
				t.Errorf("DisplayName = %q, want %q", got, tt.want)
			}
		})
	}
}
