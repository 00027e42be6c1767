package server

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/jrsteele09/pcrs-client/upload"
	"github.com/rs/zerolog/log"
)

const maxUploadMemory = 32 << 20

func (s *Server) collectionOf(w http.ResponseWriter, r *http.Request) (adminCollection, bool) {
	c, ok := s.collections[r.PathValue("resource")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Not found.")
	}
	return c, ok
}

func (s *Server) AdminListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.collectionOf(w, r)
		if !ok {
			return
		}
		p, err := s.pageOf(r)
		if err != nil {
			writeDetail(w, http.StatusNotFound, "Invalid page.")
			return
		}
		items, total, err := c.list(p)
		if err != nil {
			writeError(w, err)
			return
		}
		writePage(w, r, p, items, total)
	}
}

func (s *Server) AdminCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.collectionOf(w, r)
		if !ok {
			return
		}
		item, err := c.create(r)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

func (s *Server) AdminGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.collectionOf(w, r)
		if !ok {
			return
		}
		id, err := pathID(r)
		if err == nil {
			var item any
			if item, err = c.get(id); err == nil {
				writeJSON(w, http.StatusOK, item)
				return
			}
		}
		writeError(w, err)
	}
}

func (s *Server) AdminUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.collectionOf(w, r)
		if !ok {
			return
		}
		id, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		item, err := c.update(id, r)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (s *Server) AdminDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.collectionOf(w, r)
		if !ok {
			return
		}
		id, err := pathID(r)
		if err == nil {
			err = c.delete(id)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AdminUploadHandler accepts a CSV spreadsheet (and, for products, an
// optional zip of images), answers 202 straight away and imports the rows
// in the background after the configured job delay.
func (s *Server) AdminUploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("resource")
		c, ok := s.collectionOf(w, r)
		if !ok {
			return
		}
		imp, ok := c.(importer)
		if !ok {
			writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Bulk upload is not supported for %s.", name))
			return
		}
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			writeFieldErrors(w, errors.FieldErrors{upload.SpreadsheetField: "The submitted data was not a file. Check the encoding type on the form."})
			return
		}

		sheet, _, err := r.FormFile(upload.SpreadsheetField)
		if err != nil {
			writeFieldErrors(w, errors.FieldErrors{upload.SpreadsheetField: "No file was submitted."})
			return
		}
		defer sheet.Close()
		records, err := readRecords(sheet)
		if err != nil {
			writeFieldErrors(w, errors.FieldErrors{upload.SpreadsheetField: err.Error()})
			return
		}

		images := map[string]bool{}
		if f, hdr, err := r.FormFile(upload.ImagesField); err == nil {
			defer f.Close()
			if images, err = zipEntries(f, hdr.Size); err != nil {
				writeFieldErrors(w, errors.FieldErrors{upload.ImagesField: "Upload a valid zip archive."})
				return
			}
		}

		s.schedule(name+" import", func(ctx context.Context) error {
			imported := 0
			for i, rec := range records {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if err := imp.importRecord(rec, images); err != nil {
					log.Warn().Err(err).Str("resource", name).Int("row", i+2).Msg("skipping row")
					continue
				}
				imported++
			}
			log.Info().Str("resource", name).Int("imported", imported).Int("rows", len(records)).Msg("import finished")
			return nil
		})

		writeJSON(w, http.StatusAccepted, upload.Job{
			Message:  fmt.Sprintf("Upload accepted. %d rows queued for import.", len(records)),
			Accepted: len(records),
		})
	}
}

// readRecords parses a CSV with a header row into one map per data row.
// Header names are lower-cased and trimmed.
func readRecords(r io.Reader) ([]map[string]string, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("Unable to read spreadsheet: %v", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("The submitted file is empty.")
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		for i, v := range row {
			if i < len(header) {
				rec[header[i]] = strings.TrimSpace(v)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func zipEntries(r io.ReaderAt, size int64) (map[string]bool, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		if !f.FileInfo().IsDir() {
			names[path.Base(f.Name)] = true
		}
	}
	return names, nil
}

// schedule runs job on the job group after the job delay. Jobs log their
// own failures so one bad import never cancels the others.
func (s *Server) schedule(name string, job func(ctx context.Context) error) {
	s.jobs.Go(func() error {
		timer := time.NewTimer(s.jobDelay)
		defer timer.Stop()
		select {
		case <-s.jobsCtx.Done():
			log.Debug().Str("job", name).Msg("job cancelled before it started")
			return nil
		case <-timer.C:
		}
		if err := job(s.jobsCtx); err != nil {
			log.Err(err).Str("job", name).Msg("job failed")
		}
		return nil
	})
}
