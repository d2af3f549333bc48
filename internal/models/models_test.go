// internal/models/models_test.go
package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Tag Decoding Tests
// ==========================

func TestTag_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantKind    TagKind
		wantName    string
		wantSpecial bool
	}{
		{name: "bare string", raw: `"Technology"`, wantKind: TagPlain, wantName: "Technology"},
		{name: "annotated special", raw: `{"tag":"Healthcare","isSpecial":true}`, wantKind: TagAnnotated, wantName: "Healthcare", wantSpecial: true},
		{name: "annotated without flag", raw: `{"tag":"Education"}`, wantKind: TagAnnotated, wantName: "Education"},
		{name: "annotated with non-bool flag", raw: `{"tag":"Education","isSpecial":"yes"}`, wantKind: TagAnnotated, wantName: "Education"},
		{name: "null", raw: `null`, wantKind: TagMalformed},
		{name: "number", raw: `42`, wantKind: TagMalformed},
		{name: "object without tag", raw: `{}`, wantKind: TagMalformed},
		{name: "object with numeric tag", raw: `{"tag":7}`, wantKind: TagMalformed},
		{name: "nested array", raw: `["Technology"]`, wantKind: TagMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tag Tag
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &tag))
			assert.Equal(t, tt.wantKind, tag.Kind())
			assert.Equal(t, tt.wantName, tag.Name())
			assert.Equal(t, tt.wantSpecial, tag.IsSpecial())
			assert.Equal(t, tt.wantKind != TagMalformed, tag.Valid())
		})
	}
}

func TestTagList_UnmarshalJSON(t *testing.T) {
	t.Run("mixed representations", func(t *testing.T) {
		var l TagList
		require.NoError(t, json.Unmarshal([]byte(`["Technology",{"tag":"Healthcare","isSpecial":true},null,42]`), &l))
		require.Len(t, l, 4)
		assert.Equal(t, []string{"Technology", "Healthcare"}, l.Names())
		assert.False(t, l[2].Valid())
		assert.Equal(t, json.RawMessage("42"), l[3].Raw())
	})

	t.Run("not an array", func(t *testing.T) {
		for _, raw := range []string{`"Technology"`, `{"tag":"x"}`, `null`, `12`} {
			var l TagList
			require.NoError(t, json.Unmarshal([]byte(raw), &l))
			assert.Empty(t, l, raw)
		}
	})
}

func TestTag_MarshalJSON(t *testing.T) {
	l := TagList{PlainTag("Technology"), AnnotatedTag("Healthcare", true)}
	data, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `["Technology",{"tag":"Healthcare","isSpecial":true}]`, string(data))
}

// ==========================
// Flexible Value Tests
// ==========================

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw     string
		want    Number
		wantErr bool
	}{
		{raw: `12.5`, want: 12.5},
		{raw: `"250000"`, want: 250000},
		{raw: `" 36 "`, want: 36},
		{raw: `""`, want: 0},
		{raw: `null`, want: 0},
		{raw: `"abc"`, wantErr: true},
		{raw: `true`, wantErr: true},
		{raw: `"NaN"`, wantErr: true},
		{raw: `"Inf"`, wantErr: true},
		{raw: `"-Inf"`, wantErr: true},
		{raw: `"+Infinity"`, wantErr: true},
		{raw: `"1e400"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var n Number
			err := json.Unmarshal([]byte(tt.raw), &n)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestNumber_OrDefault(t *testing.T) {
	assert.Equal(t, 12.0, Number(0).OrDefault(12))
	assert.Equal(t, 8.5, Number(8.5).OrDefault(12))
	assert.Equal(t, 12.0, Number(math.NaN()).OrDefault(12))
	assert.Equal(t, 36.0, Number(math.Inf(1)).OrDefault(36))
	assert.Equal(t, 36.0, Number(math.Inf(-1)).OrDefault(36))
}

func TestID_UnmarshalJSON(t *testing.T) {
	var a struct {
		ID ID `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id":"app-1"}`), &a))
	assert.Equal(t, ID("app-1"), a.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id":1712345678901}`), &a))
	assert.Equal(t, ID("1712345678901"), a.ID)
}

// ==========================
// Record Tests
// ==========================

func TestApplication_DecodeFormValues(t *testing.T) {
	raw := `{
		"id": 4711,
		"companyName": "Acme Agro",
		"loanAmount": "250000",
		"interestRate": 9.5,
		"tags": ["Agribusiness", {"tag": "Renewable-Energy", "isSpecial": true}],
		"fundingReceived": 0,
		"fundingStatus": "pending"
	}`

	var app Application
	require.NoError(t, json.Unmarshal([]byte(raw), &app))
	assert.Equal(t, ID("4711"), app.ID)
	assert.Equal(t, Number(250000), app.LoanAmount)
	assert.Equal(t, Number(9.5), app.InterestRate)
	assert.Equal(t, Number(0), app.LoanTenure)
	assert.Equal(t, []string{"Agribusiness", "Renewable-Energy"}, app.Tags.Names())
	assert.False(t, app.IsFinalized())
}

func TestApplicationAmendment_Apply(t *testing.T) {
	app := &Application{
		ID:           "a1",
		LoanAmount:   100000,
		InterestRate: 10,
		Tags:         PlainTags("Technology"),
		Documents:    map[string]interface{}{"license": "l.pdf"},
	}

	rate := Number(8)
	tags := PlainTags("Technology", "Education")
	m := &ApplicationAmendment{
		InterestRate: &rate,
		Tags:         &tags,
		Documents:    map[string]interface{}{"audit": "a.pdf"},
	}
	require.False(t, m.IsEmpty())
	m.Apply(app)

	assert.Equal(t, Number(8), app.InterestRate)
	assert.Equal(t, Number(100000), app.LoanAmount)
	assert.Equal(t, []string{"Technology", "Education"}, app.Tags.Names())
	assert.Len(t, app.Documents, 2)
	assert.True(t, (&ApplicationAmendment{}).IsEmpty())
}

func TestInvestorPreference_UnmarshalJSON(t *testing.T) {
	t.Run("preferencesId alias", func(t *testing.T) {
		var p InvestorPreference
		require.NoError(t, json.Unmarshal([]byte(`{"preferencesId":918273,"preferences":["Technology"],"amountToInvest":"50000"}`), &p))
		assert.Equal(t, ID("918273"), p.ID)
		assert.Equal(t, Number(50000), p.AmountToInvest)
	})

	t.Run("id wins over alias", func(t *testing.T) {
		var p InvestorPreference
		require.NoError(t, json.Unmarshal([]byte(`{"id":"p1","preferencesId":"p2"}`), &p))
		assert.Equal(t, ID("p1"), p.ID)
	})

	t.Run("set dedupes", func(t *testing.T) {
		p := InvestorPreference{Preferences: []string{"Technology", "Technology", "Healthcare"}}
		assert.Len(t, p.PreferenceSet(), 2)
	})
}

func TestBid_Outstanding(t *testing.T) {
	b := Bid{LoanAmount: decimal.NewFromInt(1000), FundingReceived: decimal.NewFromInt(400)}
	assert.True(t, b.Outstanding().Equal(decimal.NewFromInt(600)))

	b.FundingReceived = decimal.NewFromInt(1500)
	assert.True(t, b.Outstanding().IsZero())
}
