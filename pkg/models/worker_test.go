package models

import "testing"

func TestWorker_HasCapabilities(t *testing.T) {
	worker := &Worker{
		ID:           "worker-1",
		Capabilities: []string{"research", "summarization", "analysis"},
	}

	tests := []struct {
		name     string
		required []string
		want     bool
	}{
		{"empty requirements always match", nil, true},
		{"single matching capability", []string{"research"}, true},
		{"all capabilities present", []string{"research", "analysis"}, true},
		{"one capability missing", []string{"research", "synthesis"}, false},
		{"no capabilities present", []string{"synthesis"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := worker.HasCapabilities(tt.required); got != tt.want {
				t.Errorf("HasCapabilities(%v) = %v, want %v", tt.required, got, tt.want)
			}
		})
	}
}

func TestWorkerStatus_Valid(t *testing.T) {
	tests := []struct {
		status WorkerStatus
		want   bool
	}{
		{WorkerStatusAvailable, true},
		{WorkerStatusAssigned, true},
		{WorkerStatusIdle, true},
		{WorkerStatus(""), false},
		{WorkerStatus("busy"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("WorkerStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
