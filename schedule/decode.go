package schedule

import (
	"bytes"
	"path"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/viper"

	"ec2scheduler/errors"
)

// rawDocument is the schedule document before validation, shared by every syntax
type rawDocument struct {
	AllDay       string
	HalfDay      string
	StartTime    string
	StopTime     string
	StopUntagged string
	RoleARNs     []string
	AccountNames map[string]string
}

type hclDocument struct {
	StartTime    string            `hcl:"start_time"`
	StopTime     string            `hcl:"stop_time"`
	StopUntagged bool              `hcl:"stop_untagged_instances,optional"`
	RoleARNs     []string          `hcl:"role_arns"`
	AccountNames map[string]string `hcl:"account_names,optional"`
	Schedule     hclSchedule       `hcl:"schedule,block"`
}

type hclSchedule struct {
	AllDay  string `hcl:"all_day"`
	HalfDay string `hcl:"half_day"`
}

// Decode parses and validates a schedule document. The syntax is chosen from
// the object key's extension: .hcl, .yaml/.yml, anything else is JSON.
func Decode(key string, body []byte) (*Config, error) {
	var (
		raw *rawDocument
		err error
	)

	switch strings.ToLower(path.Ext(key)) {
	case ".hcl":
		raw, err = decodeHCL(key, body)
	case ".yaml", ".yml":
		raw, err = decodeViper("yaml", body)
	default:
		raw, err = decodeViper("json", body)
	}
	if err != nil {
		return nil, err
	}

	return raw.validate()
}

func decodeViper(format string, body []byte) (*rawDocument, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(body)); err != nil {
		return nil, errors.New(errors.ErrConfigParse, "schedule document is not valid "+format,
			map[string]interface{}{
				"format": format,
			}, err)
	}

	return &rawDocument{
		AllDay:       v.GetString("schedule.allDay"),
		HalfDay:      v.GetString("schedule.halfDay"),
		StartTime:    firstSet(v, "startTime", "times.startTime"),
		StopTime:     firstSet(v, "stopTime", "times.stopTime"),
		StopUntagged: v.GetString("stop_untagged_instances"),
		RoleARNs:     v.GetStringSlice("role_arns"),
		AccountNames: v.GetStringMapString("account_names"),
	}, nil
}

// firstSet returns the first key that is present; startTime and stopTime have
// been written both at the top level and nested under "times".
func firstSet(v *viper.Viper, keys ...string) string {
	for _, key := range keys {
		if v.IsSet(key) {
			return v.GetString(key)
		}
	}
	return ""
}

func decodeHCL(key string, body []byte) (*rawDocument, error) {
	var doc hclDocument
	if err := hclsimple.Decode(path.Base(key), body, nil, &doc); err != nil {
		return nil, errors.New(errors.ErrConfigParse, "schedule document is not valid hcl",
			map[string]interface{}{
				"format": "hcl",
			}, err)
	}

	return &rawDocument{
		AllDay:       doc.Schedule.AllDay,
		HalfDay:      doc.Schedule.HalfDay,
		StartTime:    doc.StartTime,
		StopTime:     doc.StopTime,
		StopUntagged: strconv.FormatBool(doc.StopUntagged),
		RoleARNs:     doc.RoleARNs,
		AccountNames: doc.AccountNames,
	}, nil
}

func (r *rawDocument) validate() (*Config, error) {
	invalid := func(field string, value interface{}, err error) error {
		return errors.New(errors.ErrConfigInvalid, "invalid "+field,
			map[string]interface{}{
				"field": field,
				"value": value,
			}, err)
	}

	allDay, err := ParseWindow(r.AllDay)
	if err != nil {
		return nil, invalid("schedule.allDay", r.AllDay, err)
	}
	halfDay, err := ParseWindow(r.HalfDay)
	if err != nil {
		return nil, invalid("schedule.halfDay", r.HalfDay, err)
	}

	start, err := ParseClockTime(r.StartTime)
	if err != nil {
		return nil, invalid("startTime", r.StartTime, err)
	}
	stop, err := ParseClockTime(r.StopTime)
	if err != nil {
		return nil, invalid("stopTime", r.StopTime, err)
	}

	stopUntagged := false
	if r.StopUntagged != "" {
		stopUntagged, err = strconv.ParseBool(r.StopUntagged)
		if err != nil {
			return nil, invalid("stop_untagged_instances", r.StopUntagged, err)
		}
	}

	for _, roleARN := range r.RoleARNs {
		parsed, err := arn.Parse(roleARN)
		if err != nil {
			return nil, invalid("role_arns", roleARN, err)
		}
		if parsed.AccountID == "" {
			return nil, invalid("role_arns", roleARN, nil)
		}
	}

	accountNames := r.AccountNames
	if accountNames == nil {
		accountNames = map[string]string{}
	}

	return &Config{
		AllDay:       allDay,
		HalfDay:      halfDay,
		Start:        start,
		Stop:         stop,
		StopUntagged: stopUntagged,
		RoleARNs:     r.RoleARNs,
		AccountNames: accountNames,
	}, nil
}
