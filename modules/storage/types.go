package storage

// ListFilesRequest is the request for the list-files bus service.
type ListFilesRequest struct{}

// ListFilesResponse is the reply of the list-files bus service.
type ListFilesResponse struct {
	Files []string `json:"files"`
	Error string   `json:"error,omitempty"`
}
