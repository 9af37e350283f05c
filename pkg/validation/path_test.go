// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"reflect"
	"testing"
)

func TestValidateSegments(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		wantErr  bool
	}{
		{"empty path is root", []string{}, false},
		{"nil path is root", nil, false},
		{"single segment", []string{"robot"}, false},
		{"nested", []string{"robot", "arm", "gripper"}, false},
		{"dots allowed", []string{"link.0"}, false},
		{"spaces allowed", []string{"left arm"}, false},

		{"empty segment", []string{""}, true},
		{"empty middle segment", []string{"robot", "", "arm"}, true},
		{"embedded separator", []string{"robot/arm"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSegments(tt.segments)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSegments(%v) error = %v, wantErr %v", tt.segments, err, tt.wantErr)
			}
		})
	}
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []string
	}{
		{"absolute", "/robot/arm", []string{"robot", "arm"}},
		{"relative", "robot/arm", []string{"robot", "arm"}},
		{"trailing separator", "robot/arm/", []string{"robot", "arm"}},
		{"repeated separators", "robot//arm", []string{"robot", "arm"}},
		{"single", "robot", []string{"robot"}},
		{"empty is root", "", []string{}},
		{"separator only is root", "/", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePath(tt.path)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		want     string
	}{
		{"nested", []string{"robot", "arm"}, "robot/arm"},
		{"single", []string{"robot"}, "robot"},
		{"root", []string{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinPath(tt.segments); got != tt.want {
				t.Errorf("JoinPath(%v) = %q, want %q", tt.segments, got, tt.want)
			}
		})
	}
}

func TestParseJoinRoundTrip(t *testing.T) {
	paths := []string{"robot/arm", "a", "a/b/c"}
	for _, p := range paths {
		if got := JoinPath(ParsePath(p)); got != p {
			t.Errorf("JoinPath(ParsePath(%q)) = %q", p, got)
		}
	}
}
