package main

import "testing"

func TestArchiveCmd_BareFlagDefaults(t *testing.T) {
	cmd := archiveCmd()

	cases := []struct {
		flag string
		want string
	}{
		{"output", "output"},
		{"json", "dm.json"},
		{"text", "dm.txt"},
		{"sqlite", "dm.db"},
		{"files", "output_files"},
	}
	for _, tc := range cases {
		f := cmd.Flags().Lookup(tc.flag)
		if f == nil {
			t.Fatalf("flag --%s not registered", tc.flag)
		}
		if f.NoOptDefVal != tc.want {
			t.Errorf("--%s bare default = %q, want %q", tc.flag, f.NoOptDefVal, tc.want)
		}
	}
}
