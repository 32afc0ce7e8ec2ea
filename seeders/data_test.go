package seeders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDemoData(t *testing.T) {
	data, err := LoadDemoData()
	require.NoError(t, err)

	assert.NotEmpty(t, data.Assets)
	assert.NotEmpty(t, data.SpareParts)
	assert.NotEmpty(t, data.Plans)
	assert.Equal(t, "BRL", data.Settings.Currency)
	assert.Empty(t, data.Assets[0].ParentCode)
}

func TestParseData_RejectsBrokenReferences(t *testing.T) {
	cases := map[string]string{
		"parent after child": `
assets:
  - {code: B, parent_code: A, name: b}
  - {code: A, name: a}
`,
		"duplicate code": `
assets:
  - {code: A, name: a}
  - {code: A, name: a2}
`,
		"plan on unknown asset": `
assets:
  - {code: A, name: a}
preventive_plans:
  - {name: p, asset_code: Z, frequency_value: 1, frequency_unit: days}
`,
		"bad frequency unit": `
assets:
  - {code: A, name: a}
preventive_plans:
  - {name: p, asset_code: A, frequency_value: 1, frequency_unit: weeks}
`,
		"unknown technician": `
assets:
  - {code: A, name: a}
preventive_plans:
  - {name: p, asset_code: A, technician_email: x@y.z, frequency_value: 1, frequency_unit: days}
`,
		"bad role": `
users:
  - {fio: u, email: u@x.y, password: secret1, role: root}
`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseData([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestParseData_Malformed(t *testing.T) {
	_, err := ParseData([]byte("assets: [\n"))
	assert.Error(t, err)
}
