package viewers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/caseview/internal/contentview"
)

func TestRegistry_DefaultOrder(t *testing.T) {
	r := NewDefaultRegistry(Deps{Source: newFakeSource()})
	require.Equal(t, []string{"hex", "markdown", "metadata", "strings", "text"}, r.Names())

	factories, err := r.Ordered(nil)
	require.NoError(t, err)
	var names []string
	for _, f := range factories {
		names = append(names, f.Name())
	}
	require.Equal(t, DefaultOrder, names)
}

func TestRegistry_Ordered(t *testing.T) {
	r := NewDefaultRegistry(Deps{Source: newFakeSource()})

	tests := []struct {
		name    string
		names   []string
		want    []string
		wantErr string
	}{
		{name: "subset", names: []string{"metadata", "hex"}, want: []string{"metadata", "hex"}},
		{name: "unknown", names: []string{"hex", "pdf"}, wantErr: `unknown viewer "pdf"`},
		{name: "duplicate", names: []string{"hex", "text", "hex"}, wantErr: `viewer "hex" listed twice`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factories, err := r.Ordered(tt.names)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, factories, len(tt.want))
			for i, f := range factories {
				require.Equal(t, tt.want[i], f.Name())
			}
		})
	}
}

func TestRegistry_FactoriesBuildFreshViewers(t *testing.T) {
	r := NewDefaultRegistry(Deps{Source: newFakeSource(), StringsMinLength: 6})
	factories, err := r.Ordered([]string{NameStrings})
	require.NoError(t, err)

	a, b := factories[0].New(), factories[0].New()
	require.NotSame(t, a, b)
	require.Equal(t, 6, a.(*Strings).minLen)
}

func TestRegistry_RegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	f := contentview.FactoryFunc{FactoryName: "x", Fn: func() contentview.Viewer { return NewHex(nil) }}
	require.NoError(t, r.Register(f))
	require.ErrorContains(t, r.Register(f), "already registered")
}
