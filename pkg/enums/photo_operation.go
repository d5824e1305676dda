package enums

import "fmt"

// PhotoOperation names the bulk moderation actions on photos.
type PhotoOperation string

const (
	PhotoOperationApprove   PhotoOperation = "approve"
	PhotoOperationReject    PhotoOperation = "reject"
	PhotoOperationFeature   PhotoOperation = "feature"
	PhotoOperationUnfeature PhotoOperation = "unfeature"
	PhotoOperationDelete    PhotoOperation = "delete"
)

var validPhotoOperations = []PhotoOperation{
	PhotoOperationApprove,
	PhotoOperationReject,
	PhotoOperationFeature,
	PhotoOperationUnfeature,
	PhotoOperationDelete,
}

// String returns the literal string for the operation.
func (o PhotoOperation) String() string {
	return string(o)
}

// IsValid reports whether the operation is known.
func (o PhotoOperation) IsValid() bool {
	for _, candidate := range validPhotoOperations {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParsePhotoOperation converts raw input into a PhotoOperation.
func ParsePhotoOperation(value string) (PhotoOperation, error) {
	for _, candidate := range validPhotoOperations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid photo operation %q", value)
}
