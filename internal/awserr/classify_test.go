package awserr

import (
	"errors"
	"strings"
	"testing"

	"github.com/aws/smithy-go"

	"toll_plaza/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		want     error
		contains string
	}{
		{
			name:     "client fault is rejected",
			err:      &smithy.GenericAPIError{Code: "InvalidImageFormatException", Message: "bad image", Fault: smithy.FaultClient},
			want:     domain.ErrCollaboratorRejected,
			contains: "InvalidImageFormatException",
		},
		{
			name:     "server fault is unavailable",
			err:      &smithy.GenericAPIError{Code: "InternalServerError", Message: "boom", Fault: smithy.FaultServer},
			want:     domain.ErrCollaboratorUnavailable,
			contains: "InternalServerError",
		},
		{
			name:     "transport error is unavailable",
			err:      errors.New("dial tcp: connection refused"),
			want:     domain.ErrCollaboratorUnavailable,
			contains: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("rekognition.DetectText", tt.err)
			if !errors.Is(got, tt.want) {
				t.Fatalf("Classify() = %v, want wrapping %v", got, tt.want)
			}
			if !strings.Contains(got.Error(), tt.contains) {
				t.Errorf("Classify() = %q, want it to mention %q", got, tt.contains)
			}
		})
	}

	if Classify("op", nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
}
