package gallery

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

const (
	// picturesPrefix is the key namespace all gallery objects live under.
	picturesPrefix = "pictures/"

	// presignExpiry is the lifetime of the read-only URLs handed out by the
	// listing endpoint.
	presignExpiry = time.Hour
)

// Server exposes the gallery HTTP API on top of an injected ObjectStore.
// Each request is stateless; the store client is the only shared state and
// is fixed at construction time.
type Server struct {
	store ObjectStore
	names resolver
}

// NewServer returns a Server backed by the given object store.
func NewServer(store ObjectStore) (*Server, error) {
	if store == nil {
		return nil, errors.New("store must not be nil")
	}

	return &Server{
		store: store,
		names: resolver{store: store, prefix: picturesPrefix},
	}, nil
}

// writeJSON encodes v and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encode JSON response", "err", err)
	}
}

// writeJSONError writes a uniform JSON error body.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// shortID returns the 8-hex-character random component used in generated
// storage keys and default display names.
func shortID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:4])
}

// extensionOf extracts the file extension from a display name, defaulting
// to jpg when the name has none.
func extensionOf(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx != -1 && idx < len(name)-1 {
		return name[idx+1:]
	}
	return "jpg"
}

// handleListPictures implements GET /api/pictures: one scan of the
// namespace, a metadata fetch and presigned URL per qualifying object,
// newest first. A failed metadata fetch degrades that entry to defaults
// rather than aborting the listing.
func (s *Server) handleListPictures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	objects, err := s.store.List(ctx, picturesPrefix)
	if err != nil {
		slog.Error("List pictures", "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to get pictures: "+err.Error())
		return
	}

	pictures := make([]Picture, 0, len(objects))
	for _, obj := range objects {
		if !isImageKey(obj.Key) {
			continue
		}

		raw, err := s.store.Stat(ctx, obj.Key)
		if err != nil {
			slog.Warn("Metadata fetch failed, using defaults", "key", obj.Key, "err", err)
			raw = nil
		}
		md := decodeMetadata(obj.Key, raw)

		url, err := s.store.PresignedURL(ctx, obj.Key, presignExpiry)
		if err != nil {
			slog.Warn("Presign failed", "key", obj.Key, "err", err)
		}

		pictures = append(pictures, Picture{
			Name:     md.OriginalName,
			URL:      url,
			Date:     obj.LastModified.UTC().Format(time.RFC3339),
			Size:     obj.Size,
			Rating:   md.Rating,
			Comments: md.Comments,
		})
	}

	// RFC3339 strings sort chronologically; newest first, stable so equal
	// timestamps keep their listing order.
	sort.SliceStable(pictures, func(i, j int) bool {
		return pictures[i].Date > pictures[j].Date
	})

	writeJSON(w, http.StatusOK, ListPicturesResponse{Pictures: pictures, Count: len(pictures)})
}

// handleUploadPicture implements POST /api/pictures. The payload is stored
// as-is; no image processing happens here.
func (s *Server) handleUploadPicture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer r.Body.Close()

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Data == "" {
		writeJSONError(w, http.StatusBadRequest, "No picture data provided")
		return
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("picture_%s.jpg", shortID())
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid base64 picture data")
		return
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("%s%s_%s.%s", picturesPrefix, now.Format("20060102_150405"), shortID(), extensionOf(name))

	md := Metadata{
		OriginalName: name,
		Rating:       0,
		Comments:     []Comment{},
		UploadDate:   now.Format(time.RFC3339),
	}

	if err := s.store.Put(ctx, key, data, contentType, md.encode()); err != nil {
		slog.Error("Upload picture", "key", key, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to upload picture: "+err.Error())
		return
	}

	slog.Info("Picture uploaded", "key", key, "name", name, "size", len(data))

	writeJSON(w, http.StatusOK, UploadResponse{
		Message:      "Picture uploaded successfully",
		Key:          key,
		OriginalName: name,
	})
}

// handleDeletePictures implements DELETE /api/pictures. Names that resolve
// are deleted in a single batch call; names that do not are reported back
// in not_found. Partial success is still a 200.
func (s *Server) handleDeletePictures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer r.Body.Close()

	var req PictureBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Pictures) == 0 {
		writeJSONError(w, http.StatusBadRequest, "No pictures specified for deletion")
		return
	}

	var (
		keys     []string
		notFound []string
		seen     = make(map[string]bool)
	)

	for _, name := range req.Pictures {
		key, err := s.names.resolve(ctx, name)
		if errors.Is(err, ErrNotFound) {
			notFound = append(notFound, name)
			continue
		}
		if err != nil {
			slog.Error("Resolve picture for deletion", "name", name, "err", err)
			writeJSONError(w, http.StatusInternalServerError, "Failed to delete pictures: "+err.Error())
			return
		}

		// Two requested names can resolve to the same object; delete it once.
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	if len(keys) == 0 {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:    "No matching pictures found for deletion",
			NotFound: notFound,
		})
		return
	}

	deleted, removeErrs, err := s.store.Remove(ctx, keys)
	if err != nil {
		slog.Error("Batch delete", "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to delete pictures: "+err.Error())
		return
	}

	resp := DeleteResponse{
		DeletedCount:   deleted,
		RequestedCount: len(req.Pictures),
		NotFound:       notFound,
	}
	for _, rerr := range removeErrs {
		slog.Error("Delete object", "key", rerr.Key, "err", rerr.Err)
		resp.Errors = append(resp.Errors, DeleteError{Key: rerr.Key, Error: rerr.Err.Error()})
	}

	slog.Info("Pictures deleted", "deleted", deleted, "requested", len(req.Pictures), "not_found", len(notFound))

	writeJSON(w, http.StatusOK, resp)
}

// handleRatePicture implements POST /api/pictures/rate. Ratings are
// written through a full metadata replace; 0 is the unrated default and is
// rejected as a written value.
func (s *Server) handleRatePicture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer r.Body.Close()

	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Picture == "" {
		writeJSONError(w, http.StatusBadRequest, "Picture name is required")
		return
	}

	if req.Rating < 1 || req.Rating > 5 {
		writeJSONError(w, http.StatusBadRequest, "Rating must be an integer between 1 and 5")
		return
	}

	key, err := s.names.resolve(ctx, req.Picture)
	if errors.Is(err, ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("Picture %q not found", req.Picture))
		return
	}
	if err != nil {
		slog.Error("Resolve picture for rating", "name", req.Picture, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to rate picture: "+err.Error())
		return
	}

	raw, err := s.store.Stat(ctx, key)
	if err != nil {
		slog.Error("Fetch metadata for rating", "key", key, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to rate picture: "+err.Error())
		return
	}

	md := decodeMetadata(key, raw)
	md.Rating = req.Rating
	// Re-stamp the display name so a fuzzy-matched object ends up carrying
	// the name the caller used.
	md.OriginalName = req.Picture

	if err := s.store.ReplaceMetadata(ctx, key, md.encode()); err != nil {
		slog.Error("Replace metadata for rating", "key", key, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to rate picture: "+err.Error())
		return
	}

	slog.Info("Picture rated", "name", req.Picture, "key", key, "rating", req.Rating)

	writeJSON(w, http.StatusOK, RateResponse{Success: true, Picture: req.Picture, Rating: req.Rating})
}

// handleAddComment implements POST /api/pictures/comment. The comment list
// is append-only; corrupt stored comments decode to empty and the new
// comment starts a fresh list.
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer r.Body.Close()

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Picture == "" || req.Author == "" || req.Text == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing required fields: picture, author, text")
		return
	}

	key, err := s.names.resolve(ctx, req.Picture)
	if errors.Is(err, ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "Picture not found: "+req.Picture)
		return
	}
	if err != nil {
		slog.Error("Resolve picture for comment", "name", req.Picture, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to add comment: "+err.Error())
		return
	}

	raw, err := s.store.Stat(ctx, key)
	if err != nil {
		slog.Error("Fetch metadata for comment", "key", key, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to add comment: "+err.Error())
		return
	}

	comment := Comment{
		Author: req.Author,
		Text:   req.Text,
		Date:   time.Now().UTC().Format(time.RFC3339),
	}

	md := decodeMetadata(key, raw)
	md.Comments = append(md.Comments, comment)

	if err := s.store.ReplaceMetadata(ctx, key, md.encode()); err != nil {
		slog.Error("Replace metadata for comment", "key", key, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to add comment: "+err.Error())
		return
	}

	slog.Info("Comment added", "name", req.Picture, "key", key, "author", req.Author)

	writeJSON(w, http.StatusOK, CommentResponse{Message: "Comment added successfully", Comment: comment})
}

// handleDownloadPictures implements POST /api/pictures/download: resolve
// each name, fetch the bytes, and stream back an in-memory zip whose
// entries are named by display name. Unresolved names are skipped.
func (s *Server) handleDownloadPictures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer r.Body.Close()

	var req PictureBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Pictures) == 0 {
		writeJSONError(w, http.StatusBadRequest, "No pictures specified for download")
		return
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	found := 0
	for _, name := range req.Pictures {
		key, err := s.names.resolve(ctx, name)
		if errors.Is(err, ErrNotFound) {
			slog.Warn("Picture not found for download", "name", name)
			continue
		}
		if err != nil {
			slog.Error("Resolve picture for download", "name", name, "err", err)
			writeJSONError(w, http.StatusInternalServerError, "Failed to create download: "+err.Error())
			return
		}

		data, err := s.store.Get(ctx, key)
		if err != nil {
			slog.Error("Fetch picture for download", "key", key, "err", err)
			continue
		}

		f, err := zw.Create(name)
		if err != nil {
			slog.Error("Create archive entry", "name", name, "err", err)
			writeJSONError(w, http.StatusInternalServerError, "Failed to create download: "+err.Error())
			return
		}
		if _, err := f.Write(data); err != nil {
			slog.Error("Write archive entry", "name", name, "err", err)
			writeJSONError(w, http.StatusInternalServerError, "Failed to create download: "+err.Error())
			return
		}
		found++
	}

	if err := zw.Close(); err != nil {
		slog.Error("Finalize archive", "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to create download: "+err.Error())
		return
	}

	if found == 0 {
		writeJSONError(w, http.StatusNotFound, "None of the requested pictures were found")
		return
	}

	slog.Info("Download archive created", "pictures", found, "bytes", buf.Len())

	filename := fmt.Sprintf("photos_%s.zip", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("Stream archive", "err", err)
	}
}

// handleStats implements GET /api/stats: a single scan aggregating counts,
// sizes, ratings, comments, and the most recent upload. Nothing is cached;
// the aggregate is recomputed per request.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	objects, err := s.store.List(ctx, picturesPrefix)
	if err != nil {
		slog.Error("List objects for stats", "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to get stats: "+err.Error())
		return
	}

	var (
		totalPictures int
		totalSize     int64
		totalRating   int
		ratedPictures int
		totalComments int
		mostRecent    time.Time
	)

	for _, obj := range objects {
		if !isImageKey(obj.Key) {
			continue
		}

		totalPictures++
		totalSize += obj.Size
		if obj.LastModified.After(mostRecent) {
			mostRecent = obj.LastModified
		}

		raw, err := s.store.Stat(ctx, obj.Key)
		if err != nil {
			slog.Warn("Metadata fetch failed for stats", "key", obj.Key, "err", err)
			continue
		}

		md := decodeMetadata(obj.Key, raw)
		if md.Rating > 0 {
			totalRating += md.Rating
			ratedPictures++
		}
		totalComments += len(md.Comments)
	}

	averageRating := 0.0
	if ratedPictures > 0 {
		averageRating = math.Round(float64(totalRating)/float64(ratedPictures)*10) / 10
	}

	mostRecentUpload := "Never"
	if !mostRecent.IsZero() {
		mostRecentUpload = mostRecent.UTC().Format("2006-01-02")
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		TotalPictures:    totalPictures,
		TotalSize:        humanize.IBytes(uint64(totalSize)),
		AverageRating:    averageRating,
		TotalComments:    totalComments,
		MostRecentUpload: mostRecentUpload,
	})
}
