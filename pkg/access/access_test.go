package access_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/stretchr/testify/require"
)

func TestParseSection(t *testing.T) {
	for _, s := range access.Sections() {
		parsed, err := access.ParseSection(s.Key())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}

	_, err := access.ParseSection("financeiro")
	require.ErrorIs(t, err, access.ErrInvalidSection)

	_, err = access.ParseSection("")
	require.ErrorIs(t, err, access.ErrInvalidSection)
}

func TestSectionsAreClosed(t *testing.T) {
	require.Len(t, access.Sections(), 9)
	require.False(t, access.Section(0).Valid())
	require.False(t, access.Section(42).Valid())
	require.Empty(t, access.Section(42).Key())
}

func TestNormalizePromotesView(t *testing.T) {
	tests := []struct {
		name string
		in   access.Permission
		want bool
	}{
		{"nothing", access.Permission{}, false},
		{"view only", access.Permission{View: true}, true},
		{"create", access.Permission{Create: true}, true},
		{"edit", access.Permission{Edit: true}, true},
		{"delete", access.Permission{Delete: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.in.Normalize().View)
		})
	}
}

func TestActionForMethod(t *testing.T) {
	require.Equal(t, access.ActionView, access.ActionForMethod(http.MethodGet))
	require.Equal(t, access.ActionView, access.ActionForMethod(http.MethodHead))
	require.Equal(t, access.ActionCreate, access.ActionForMethod(http.MethodPost))
	require.Equal(t, access.ActionEdit, access.ActionForMethod(http.MethodPut))
	require.Equal(t, access.ActionEdit, access.ActionForMethod(http.MethodPatch))
	require.Equal(t, access.ActionDelete, access.ActionForMethod(http.MethodDelete))
	require.Equal(t, access.ActionDelete, access.ActionForMethod("PURGE"))
}

func TestEmptyMapDeniesEverything(t *testing.T) {
	m := access.Empty()
	for _, s := range access.Sections() {
		for _, a := range []access.Action{access.ActionView, access.ActionCreate, access.ActionEdit, access.ActionDelete} {
			require.False(t, m.Has(s, a), "%s/%s", s, a)
		}
	}

	var nilMap access.Map
	require.False(t, nilMap.Has(access.Dashboard, access.ActionView))
}

func TestMapJSONUsesSectionKeys(t *testing.T) {
	m := access.Map{access.Atendimento: {View: true, Create: true}}

	b, err := json.Marshal(m)
	require.NoError(t, err)
	require.JSONEq(t, `{"atendimento":{"view":true,"create":true,"edit":false,"delete":false}}`, string(b))

	var decoded access.Map
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.True(t, decoded.Has(access.Atendimento, access.ActionCreate))

	require.Error(t, json.Unmarshal([]byte(`{"nope":{"view":true}}`), &decoded))
}

func TestVisibleNavigation(t *testing.T) {
	m := access.Map{
		access.Dashboard:   {View: true},
		access.Atendimento: {View: true, Create: true},
		access.Clientes:    {},
	}

	items := access.VisibleNavigation(m)
	require.Len(t, items, 2)
	require.Equal(t, access.Dashboard, items[0].Section)
	require.Equal(t, access.Atendimento, items[1].Section)
	require.Len(t, access.Navigation(), len(access.Sections()))
}
