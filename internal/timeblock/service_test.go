package timeblock

import (
	"testing"

	"github.com/hray3182/dayline/internal/models"
)

func TestCheckPermutation(t *testing.T) {
	blocks := []*models.TimeBlock{{ID: 1}, {ID: 2}, {ID: 3}}

	cases := []struct {
		name    string
		ids     []int64
		wantErr bool
	}{
		{"same order", []int64{1, 2, 3}, false},
		{"reversed", []int64{3, 2, 1}, false},
		{"missing block", []int64{1, 2}, true},
		{"duplicate", []int64{1, 1, 2}, true},
		{"foreign block", []int64{1, 2, 9}, true},
	}

	for _, c := range cases {
		err := checkPermutation(blocks, c.ids)
		if (err != nil) != c.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", c.name, err, c.wantErr)
		}
	}
}

func TestInputValidate(t *testing.T) {
	cases := []struct {
		in      Input
		wantErr bool
	}{
		{Input{Name: "Deep work", StartTime: "09:00", EndTime: "11:30"}, false},
		{Input{Name: "", StartTime: "09:00", EndTime: "10:00"}, true},
		{Input{Name: "Gym", StartTime: "9am", EndTime: "10:00"}, true},
		{Input{Name: "Gym", StartTime: "09:00", EndTime: "25:00"}, true},
	}
	for _, c := range cases {
		if err := c.in.validate(); (err != nil) != c.wantErr {
			t.Errorf("%+v: err = %v, wantErr %v", c.in, err, c.wantErr)
		}
	}
}
