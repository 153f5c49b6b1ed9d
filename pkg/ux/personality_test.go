// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"testing"
)

// withPersonality sets level for the duration of a test.
func withPersonality(t *testing.T, level PersonalityLevel) {
	t.Helper()
	saved := GetPersonality()
	SetPersonalityLevel(level)
	t.Cleanup(func() { SetPersonality(saved) })
}

func TestSetPersonalityLevel_Banner(t *testing.T) {
	withPersonality(t, PersonalityFull)
	if !GetPersonality().ShowBanner {
		t.Error("full personality should show the banner")
	}

	SetPersonalityLevel(PersonalityMinimal)
	p := GetPersonality()
	if p.Level != PersonalityMinimal || p.ShowBanner {
		t.Errorf("got %+v, want minimal without banner", p)
	}
}

func TestParsePersonalityLevel(t *testing.T) {
	tests := []struct {
		in   string
		want PersonalityLevel
	}{
		{"full", PersonalityFull},
		{"F", PersonalityFull},
		{"std", PersonalityStandard},
		{" minimal ", PersonalityMinimal},
		{"quiet", PersonalityMachine},
		{"machine", PersonalityMachine},
		{"sparkly", PersonalityStandard},
		{"", PersonalityStandard},
	}

	for _, tt := range tests {
		if got := ParsePersonalityLevel(tt.in); got != tt.want {
			t.Errorf("ParsePersonalityLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInitPersonality_EnvOverrides(t *testing.T) {
	saved := GetPersonality()
	t.Cleanup(func() { SetPersonality(saved) })

	t.Setenv(PersonalityEnv, "minimal")
	InitPersonality("full")

	if got := GetPersonality().Level; got != PersonalityMinimal {
		t.Errorf("Level = %q, want minimal from %s", got, PersonalityEnv)
	}
}

func TestIsTerminal_Nil(t *testing.T) {
	if IsTerminal(nil) {
		t.Error("nil file cannot be a terminal")
	}
}

func TestShouldShowColors(t *testing.T) {
	withPersonality(t, PersonalityMachine)
	if ShouldShowColors() {
		t.Error("machine mode should not show colors")
	}
	SetPersonalityLevel(PersonalityStandard)
	if !ShouldShowColors() {
		t.Error("standard mode should show colors")
	}
}
