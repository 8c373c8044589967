package runlog

import (
	"testing"

	"github.com/contentradar/scraper/internal/domain"
)

func TestValidateStateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.RunStatus
		to      domain.RunStatus
		wantErr bool
	}{
		{"pending to running", domain.RunPending, domain.RunRunning, false},
		{"pending to cancelled", domain.RunPending, domain.RunCancelled, false},
		{"pending to completed", domain.RunPending, domain.RunCompleted, true},
		{"pending to failed", domain.RunPending, domain.RunFailed, true},

		{"running to completed", domain.RunRunning, domain.RunCompleted, false},
		{"running to failed", domain.RunRunning, domain.RunFailed, false},
		{"running to partial", domain.RunRunning, domain.RunPartial, false},
		{"running to cancelled", domain.RunRunning, domain.RunCancelled, false},
		{"running to pending", domain.RunRunning, domain.RunPending, true},

		{"completed has no outbound transitions", domain.RunCompleted, domain.RunRunning, true},
		{"failed has no outbound transitions", domain.RunFailed, domain.RunPending, true},
		{"cancelled has no outbound transitions", domain.RunCancelled, domain.RunRunning, true},
		{"partial has no outbound transitions", domain.RunPartial, domain.RunCompleted, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStateTransition(tt.from, tt.to)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateStateTransition(%s, %s) = nil, want error", tt.from, tt.to)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateStateTransition(%s, %s) = %v, want nil", tt.from, tt.to, err)
			}
		})
	}
}

func TestCanCancel(t *testing.T) {
	cancellable := []domain.RunStatus{domain.RunPending, domain.RunRunning}
	terminal := []domain.RunStatus{domain.RunCompleted, domain.RunFailed, domain.RunCancelled, domain.RunPartial}

	for _, s := range cancellable {
		if !CanCancel(s) {
			t.Errorf("CanCancel(%s) = false, want true", s)
		}
	}
	for _, s := range terminal {
		if CanCancel(s) {
			t.Errorf("CanCancel(%s) = true, want false", s)
		}
	}
}
