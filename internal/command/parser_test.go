// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"reflect"
	"testing"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantID   string
		wantArgs []string
		wantOK   bool
	}{
		{"bare command", "/clean", "clean", nil, true},
		{"command with args", "/explain main.go", "explain", []string{"main.go"}, true},
		{"leading whitespace", "  /commit  ", "commit", nil, true},
		{"quoted arg with spaces", `/explain "my file.go"`, "explain", []string{"my file.go"}, true},
		{"single quoted arg", "/explain 'my file.go'", "explain", []string{"my file.go"}, true},
		{"not a command", "hello world", "", nil, false},
		{"empty input", "", "", nil, false},
		{"lone slash", "/", "", nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, args, ok := parseInput(tc.input)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if id != tc.wantID {
				t.Errorf("id = %q, want %q", id, tc.wantID)
			}
			if len(args) != len(tc.wantArgs) || (len(args) > 0 && !reflect.DeepEqual(args, tc.wantArgs)) {
				t.Errorf("args = %v, want %v", args, tc.wantArgs)
			}
		})
	}
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"simple", "a b c", []string{"a", "b", "c"}},
		{"double quotes", `a "b c" d`, []string{"a", "b c", "d"}},
		{"single quotes", "a 'b c' d", []string{"a", "b c", "d"}},
		{"escaped quote inside quotes", `a "b \" c"`, []string{"a", `b " c`}},
		{"unterminated quote keeps rest", `a "b c`, []string{"a", "b c"}},
		{"collapsed whitespace", "a   b", []string{"a", "b"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := splitCommandLine(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("splitCommandLine(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestIsCommand(t *testing.T) {
	if !IsCommand("  /setup") {
		t.Error(`IsCommand("  /setup") = false`)
	}
	if IsCommand("setup") {
		t.Error(`IsCommand("setup") = true`)
	}
}
