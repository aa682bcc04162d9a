package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ec2scheduler/errors"
)

const jsonDocument = `{
  "schedule": {"allDay": "24x7", "halfDay": "12x5"},
  "startTime": "7,0",
  "stopTime": "19,0",
  "stop_untagged_instances": "True",
  "role_arns": [
    "arn:aws:iam::111122223333:role/Ec2StartStop",
    "arn:aws:iam::444455556666:role/Ec2StartStop"
  ],
  "account_names": {"111122223333": "dev", "444455556666": "staging"}
}`

func TestDecode(t *testing.T) {
	expected := &Config{
		AllDay:       Window{Hours: 24, Days: 7, Raw: "24x7"},
		HalfDay:      Window{Hours: 12, Days: 5, Raw: "12x5"},
		Start:        ClockTime{Hour: 7},
		Stop:         ClockTime{Hour: 19},
		StopUntagged: true,
		RoleARNs: []string{
			"arn:aws:iam::111122223333:role/Ec2StartStop",
			"arn:aws:iam::444455556666:role/Ec2StartStop",
		},
		AccountNames: map[string]string{"111122223333": "dev", "444455556666": "staging"},
	}

	tests := []struct {
		name string
		key  string
		body string
	}{
		{
			name: "json",
			key:  "Lambdas/start-stop/config.json",
			body: jsonDocument,
		},
		{
			name: "json with nested times and boolean flag",
			key:  "config",
			body: `{
  "schedule": {"allDay": "24x7", "halfDay": "12x5"},
  "times": {"startTime": "7,0", "stopTime": "19,0"},
  "stop_untagged_instances": true,
  "role_arns": ["arn:aws:iam::111122223333:role/Ec2StartStop", "arn:aws:iam::444455556666:role/Ec2StartStop"],
  "account_names": {"111122223333": "dev", "444455556666": "staging"}
}`,
		},
		{
			name: "yaml",
			key:  "scheduler/config.yaml",
			body: `
schedule:
  allDay: 24x7
  halfDay: 12x5
startTime: "7,0"
stopTime: "19,0"
stop_untagged_instances: "True"
role_arns:
  - arn:aws:iam::111122223333:role/Ec2StartStop
  - arn:aws:iam::444455556666:role/Ec2StartStop
account_names:
  "111122223333": dev
  "444455556666": staging
`,
		},
		{
			name: "hcl",
			key:  "scheduler/config.hcl",
			body: `
start_time              = "7,0"
stop_time               = "19,0"
stop_untagged_instances = true

role_arns = [
  "arn:aws:iam::111122223333:role/Ec2StartStop",
  "arn:aws:iam::444455556666:role/Ec2StartStop",
]

account_names = {
  "111122223333" = "dev"
  "444455556666" = "staging"
}

schedule {
  all_day  = "24x7"
  half_day = "12x5"
}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.key, []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, expected, got)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		body    string
		errType errors.ErrorType
	}{
		{
			name:    "malformed json",
			key:     "config.json",
			body:    `{"schedule": `,
			errType: errors.ErrConfigParse,
		},
		{
			name:    "malformed hcl",
			key:     "config.hcl",
			body:    `schedule {`,
			errType: errors.ErrConfigParse,
		},
		{
			name:    "hcl missing schedule block",
			key:     "config.hcl",
			body:    `start_time = "7,0"` + "\n" + `stop_time = "19,0"` + "\n" + `role_arns = []`,
			errType: errors.ErrConfigParse,
		},
		{
			name:    "bad half day",
			key:     "config.json",
			body:    `{"schedule": {"allDay": "24x7", "halfDay": "half"}, "startTime": "7,0", "stopTime": "19,0"}`,
			errType: errors.ErrConfigInvalid,
		},
		{
			name:    "missing start time",
			key:     "config.json",
			body:    `{"schedule": {"allDay": "24x7", "halfDay": "12x5"}, "stopTime": "19,0"}`,
			errType: errors.ErrConfigInvalid,
		},
		{
			name:    "bad untagged flag",
			key:     "config.json",
			body:    `{"schedule": {"allDay": "24x7", "halfDay": "12x5"}, "startTime": "7,0", "stopTime": "19,0", "stop_untagged_instances": "sometimes"}`,
			errType: errors.ErrConfigInvalid,
		},
		{
			name:    "bad role arn",
			key:     "config.json",
			body:    `{"schedule": {"allDay": "24x7", "halfDay": "12x5"}, "startTime": "7,0", "stopTime": "19,0", "role_arns": ["Ec2StartStop"]}`,
			errType: errors.ErrConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.key, []byte(tt.body))
			assert.Nil(t, got)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.errType), "unexpected error: %v", err)
		})
	}
}

func TestDecode_Defaults(t *testing.T) {
	got, err := Decode("config.json", []byte(`{"schedule": {"allDay": "24x7", "halfDay": "12x4"}, "startTime": "8,30", "stopTime": "18,0"}`))
	require.NoError(t, err)

	assert.False(t, got.StopUntagged)
	assert.Empty(t, got.RoleARNs)
	assert.NotNil(t, got.AccountNames)
	assert.Equal(t, 4, got.HalfDay.Days)
	assert.Equal(t, ClockTime{Hour: 8, Minute: 30}, got.Start)
}
