package repository

import (
	"encoding/json"
	"testing"

	"leadboard_backend/internal/leads/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateSet(t *testing.T) {
	name := "Acme"
	notes := "call back"
	status := domain.StatusWarm
	var noImages []string
	contacts := []domain.Contact{{Type: "WhatsApp", Value: "+263771234567"}}

	tests := []struct {
		name        string
		params      UpdateLeadParams
		wantClauses []string
		wantArgs    []interface{}
	}{
		{
			name:        "empty params write nothing",
			params:      UpdateLeadParams{},
			wantClauses: []string{},
			wantArgs:    []interface{}{},
		},
		{
			name:        "status only",
			params:      UpdateLeadParams{Status: &status},
			wantClauses: []string{"status = $1"},
			wantArgs:    []interface{}{"warm"},
		},
		{
			name:        "placeholders follow column order",
			params:      UpdateLeadParams{Notes: &notes, BusinessName: &name},
			wantClauses: []string{"business_name = $1", "notes = $2"},
			wantArgs:    []interface{}{"Acme", "call back"},
		},
		{
			name:        "nil slices become empty arrays",
			params:      UpdateLeadParams{Evidence: &noImages, RevampImages: &noImages},
			wantClauses: []string{"evidence = $1", "revamp_images = $2"},
			wantArgs:    []interface{}{[]string{}, []string{}},
		},
		{
			name:        "contacts",
			params:      UpdateLeadParams{Contacts: &contacts},
			wantClauses: []string{"contacts = $1"},
			wantArgs:    []interface{}{contacts},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clauses, args := buildUpdateSet(tt.params)
			assert.Equal(t, tt.wantClauses, clauses)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildUpdateSetNeverTouchesCountry(t *testing.T) {
	website := "https://acme.com"
	phone := "+263771234567"
	clauses, _ := buildUpdateSet(UpdateLeadParams{Website: &website, Phone: &phone})

	for _, clause := range clauses {
		assert.NotContains(t, clause, "country")
		assert.NotContains(t, clause, "created_at")
	}
}

func TestNilContactsEncodeAsEmptyJSONArray(t *testing.T) {
	var none []domain.Contact
	_, args := buildUpdateSet(UpdateLeadParams{Contacts: &none})
	require.Len(t, args, 1)

	raw, err := json.Marshal(args[0])
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}
