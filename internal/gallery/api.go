package gallery

// Picture is the view object returned by the listing endpoint. It is
// reconstructed per request from the store's listing and metadata; nothing
// about it is persisted in this shape.
type Picture struct {
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Date     string    `json:"date"`
	Size     int64     `json:"size"`
	Rating   int       `json:"rating"`
	Comments []Comment `json:"comments"`
}

// ListPicturesResponse is the body of GET /api/pictures.
type ListPicturesResponse struct {
	Pictures []Picture `json:"pictures"`
	Count    int       `json:"count"`
}

// UploadRequest is the body of POST /api/pictures. Data carries the image
// bytes base64-encoded; Name and ContentType are optional.
type UploadRequest struct {
	Name        string `json:"name"`
	Data        string `json:"data"`
	ContentType string `json:"contentType"`
}

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	Message      string `json:"message"`
	Key          string `json:"key"`
	OriginalName string `json:"original_name"`
}

// PictureBatchRequest names a set of pictures for a batch operation
// (delete, download).
type PictureBatchRequest struct {
	Pictures []string `json:"pictures"`
}

// DeleteResponse reports the outcome of a batch delete. Partial success is
// the normal case: unresolved names land in NotFound and store-side
// failures in Errors while the response stays 200.
type DeleteResponse struct {
	DeletedCount   int           `json:"deleted_count"`
	RequestedCount int           `json:"requested_count"`
	NotFound       []string      `json:"not_found,omitempty"`
	Errors         []DeleteError `json:"errors,omitempty"`
}

// DeleteError is one per-object failure reported by the store during a
// batch delete.
type DeleteError struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

// RateRequest is the body of POST /api/pictures/rate.
type RateRequest struct {
	Picture string `json:"picture"`
	Rating  int    `json:"rating"`
}

// RateResponse is the body of a successful rating.
type RateResponse struct {
	Success bool   `json:"success"`
	Picture string `json:"picture"`
	Rating  int    `json:"rating"`
}

// CommentRequest is the body of POST /api/pictures/comment. All fields are
// required.
type CommentRequest struct {
	Picture string `json:"picture"`
	Author  string `json:"author"`
	Text    string `json:"text"`
}

// CommentResponse echoes the stored comment, including its server-assigned
// timestamp.
type CommentResponse struct {
	Message string  `json:"message"`
	Comment Comment `json:"comment"`
}

// StatsResponse is the body of GET /api/stats. AverageRating is the mean
// of ratings above zero, rounded to one decimal; MostRecentUpload is a
// YYYY-MM-DD date or "Never" for an empty gallery.
type StatsResponse struct {
	TotalPictures    int     `json:"totalPictures"`
	TotalSize        string  `json:"totalSize"`
	AverageRating    float64 `json:"averageRating"`
	TotalComments    int     `json:"totalComments"`
	MostRecentUpload string  `json:"mostRecentUpload"`
}

// ErrorResponse is the uniform error body for 4xx/5xx responses. NotFound
// is only populated by the batch delete when no name resolved.
type ErrorResponse struct {
	Error    string   `json:"error"`
	NotFound []string `json:"not_found,omitempty"`
}
