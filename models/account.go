package models

// AccountCreationRequest carries the decrypted signup data to the remote
// client. It exists only in memory for the duration of one call.
type AccountCreationRequest struct {
	Email       string `json:"email"`
	Credential  string `json:"credential"`
	ProfileName string `json:"profile_name"`
}

// AccountResult is the remote's answer to account creation. AlreadyExists
// reports that an identity with the same email is registered; callers treat
// that as the desired end state, not a failure.
type AccountResult struct {
	UserID        int64  `json:"user_id"`
	Token         string `json:"-"`
	AlreadyExists bool   `json:"already_exists"`
}

// BatchResult is the partial-success outcome of a batch record upsert.
type BatchResult struct {
	SucceededIDs []string `json:"succeeded_ids"`
	FailedIDs    []string `json:"failed_ids"`
}

// FetchResult is one page of the remote change feed.
type FetchResult struct {
	Records    []RemoteRecord `json:"records"`
	NextCursor string         `json:"next_cursor"`
}
