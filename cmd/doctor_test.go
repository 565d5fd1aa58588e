package cmd

import "testing"

func TestDoctorRuns(t *testing.T) {
	if err := runCommand(t, "doctor"); err != nil {
		t.Fatalf("doctor: %v", err)
	}
}
