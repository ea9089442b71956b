package importer

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		body string
		want marker
	}{
		{"completed", "Import complete! 500 records imported", markerCompleted},
		{"completed past tense", "The import completed successfully", markerCompleted},
		{"completed uppercase", "IMPORT COMPLETE", markerCompleted},
		{"wrong key", "ERROR: Wrong Key provided", markerWrongKey},
		{"already running", "Import already running, try later", markerAlreadyRunning},
		{"error word", "Error: could not open file", markerFailed},
		{"fail word", "The import failed at record 30", markerFailed},
		{"progress", "processing record 30 of 500", markerStillRunning},
		{"empty", "", markerStillRunning},
		{"completion wins over error word", "Import complete with 2 errors", markerCompleted},
		{"already running wins over error word", "Error-prone import already running", markerAlreadyRunning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.body); got != tt.want {
				t.Errorf("classify(%q) = %d, want %d", tt.body, got, tt.want)
			}
		})
	}
}
