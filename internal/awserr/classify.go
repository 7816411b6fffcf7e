// Package awserr maps AWS SDK failures onto the collaborator error taxonomy.
package awserr

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"toll_plaza/internal/domain"
)

// Classify wraps err from an AWS call named op. Server-side faults and
// transport errors are ErrCollaboratorUnavailable; client faults (bad
// credentials, invalid image, throttled by policy) are ErrCollaboratorRejected.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorFault() == smithy.FaultServer {
			return fmt.Errorf("%w: %s: %s: %s", domain.ErrCollaboratorUnavailable, op, apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
		return fmt.Errorf("%w: %s: %s: %s", domain.ErrCollaboratorRejected, op, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrCollaboratorUnavailable, op, err)
}
