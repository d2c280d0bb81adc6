package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		flag     string
		expected bool
	}{
		{
			name:     "built-in flag defaults on",
			registry: New(nil),
			flag:     FlagSecondaryWindows,
			expected: true,
		},
		{
			name:     "configured value overrides default",
			registry: New(map[string]bool{FlagCloseGuard: false}),
			flag:     FlagCloseGuard,
			expected: false,
		},
		{
			name:     "extra configured flag",
			registry: New(map[string]bool{"feature-a": true}),
			flag:     "feature-a",
			expected: true,
		},
		{
			name:     "unknown flag returns false",
			registry: New(map[string]bool{"feature-a": true}),
			flag:     "unknown-flag",
			expected: false,
		},
		{
			name:     "nil registry returns false",
			registry: nil,
			flag:     FlagCloseGuard,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.registry.Enabled(tt.flag))
		})
	}
}

func TestRegistry_All(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		expected map[string]bool
	}{
		{
			name:     "defaults only",
			registry: New(nil),
			expected: Defaults(),
		},
		{
			name:     "merged with configured",
			registry: New(map[string]bool{"a": true, FlagSecondaryWindows: false}),
			expected: map[string]bool{"a": true, FlagSecondaryWindows: false, FlagCloseGuard: true},
		},
		{
			name:     "nil registry",
			registry: nil,
			expected: map[string]bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.registry.All())
		})
	}
}

func TestNew_CopiesConfiguredMap(t *testing.T) {
	configured := map[string]bool{FlagCloseGuard: false}
	r := New(configured)

	configured[FlagCloseGuard] = true
	require.False(t, r.Enabled(FlagCloseGuard))

	all := r.All()
	all["new-flag"] = true
	require.False(t, r.Enabled("new-flag"), "registry should not see mutations of All()")
}
