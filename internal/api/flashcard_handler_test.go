package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-flashgen/internal/api"
	"github.com/phrazzld/scry-flashgen/internal/api/middleware"
	"github.com/phrazzld/scry-flashgen/internal/api/shared"
	"github.com/phrazzld/scry-flashgen/internal/chunker"
	"github.com/phrazzld/scry-flashgen/internal/domain"
	"github.com/phrazzld/scry-flashgen/internal/extract"
	"github.com/phrazzld/scry-flashgen/internal/mocks"
	"github.com/phrazzld/scry-flashgen/internal/pipeline"
)

type fakeExtractor struct {
	mu      sync.Mutex
	text    string
	err     error
	sources []extract.Source
}

func (f *fakeExtractor) Supports(method string) bool {
	switch method {
	case extract.MethodPDF, extract.MethodCSV, extract.MethodText, extract.MethodWebpage, extract.MethodYouTube:
		return true
	}
	return false
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, src extract.Source) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources = append(f.sources, src)
	return f.text, f.err
}

type fakeGenerator struct {
	mu      sync.Mutex
	result  *domain.Result
	err     error
	texts   []string
	tags    []string
	images  [][]domain.ImageRef
	invoked int
}

func (f *fakeGenerator) GenerateFlashcards(
	_ context.Context,
	text, schemaTag string,
	images []domain.ImageRef,
) (*domain.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoked++
	f.texts = append(f.texts, text)
	f.tags = append(f.tags, schemaTag)
	f.images = append(f.images, images)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.Result{
		Flashcards: []domain.Flashcard{{Kind: domain.KindBasic, Question: "Q", Answer: "A"}},
		ChunkCount: 1,
	}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type filePart struct {
	name string
	data []byte
}

func multipartRequest(t *testing.T, fields map[string]string, file *filePart) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", file.name)
		require.NoError(t, err)
		_, err = fw.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/flashcard", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	middleware.Trace(discardLogger())(h).ServeHTTP(rec, req)
	return rec
}

func TestWelcomeAndHealth(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	api.Welcome(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Welcome to the flashcard generation prototype!"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	api.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestGenerate_Success(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{text: "The mitochondria is the powerhouse of the cell."}
	gen := &fakeGenerator{}
	h := api.NewFlashcardHandler(ext, gen, nil, 0, discardLogger())

	req := multipartRequest(t, map[string]string{"type": "type-I", "method": "CSV"},
		&filePart{name: "cells.csv", data: []byte("a,b")})
	rec := serve(http.HandlerFunc(h.Generate), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.FlashcardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	_, err := uuid.Parse(resp.RunID)
	assert.NoError(t, err)
	assert.Len(t, resp.Flashcards, 1)
	assert.NotNil(t, resp.Failures)
	assert.Equal(t, 1, resp.ChunkCount)

	require.Len(t, ext.sources, 1)
	assert.Equal(t, "cells.csv", ext.sources[0].Name)
	assert.Equal(t, []byte("a,b"), ext.sources[0].Data)
	assert.Equal(t, []string{"type-I"}, gen.tags)
	assert.Equal(t, []string{ext.text}, gen.texts)
	assert.NotEmpty(t, rec.Header().Get(middleware.TraceIDHeader))
}

func TestGenerate_URLEncodedText(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{text: "photosynthesis"}
	gen := &fakeGenerator{}
	h := api.NewFlashcardHandler(ext, gen, nil, 0, discardLogger())

	form := url.Values{"type": {"cloze"}, "method": {"text"}, "text": {"photosynthesis"}}
	req := httptest.NewRequest(http.MethodPost, "/flashcard", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(http.HandlerFunc(h.Generate), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, ext.sources, 1)
	assert.Equal(t, []byte("photosynthesis"), ext.sources[0].Data)
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		fields     map[string]string
		file       *filePart
		extractErr error
		text       string
		genErr     error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "missing type",
			fields:     map[string]string{"method": "text", "text": "x"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid type: required field",
		},
		{
			name:       "unknown type",
			fields:     map[string]string{"type": "type-IX", "method": "text", "text": "x"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Unsupported flashcard type",
		},
		{
			name:       "unknown method",
			fields:     map[string]string{"type": "basic", "method": "epub"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Unsupported extraction method",
		},
		{
			name:       "pdf without file",
			fields:     map[string]string{"type": "basic", "method": "pdf"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "No input provided for the extraction method",
		},
		{
			name:       "wrong extension",
			fields:     map[string]string{"type": "basic", "method": "pdf"},
			file:       &filePart{name: "notes.docx", data: []byte("x")},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "File type does not match the extraction method",
		},
		{
			name:       "images for csv",
			fields:     map[string]string{"type": "illustrated", "method": "csv", "with_images": "true"},
			file:       &filePart{name: "a.csv", data: []byte("x")},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid request",
		},
		{
			name:       "bad with_images value",
			fields:     map[string]string{"type": "basic", "method": "text", "text": "x", "with_images": "maybe"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid request",
		},
		{
			name:       "bad url",
			fields:     map[string]string{"type": "basic", "method": "webpage", "url": "not a url"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid url: invalid url",
		},
		{
			name:       "youtube without url",
			fields:     map[string]string{"type": "basic", "method": "youtube"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "extraction failure",
			fields:     map[string]string{"type": "basic", "method": "text", "text": "x"},
			extractErr: errors.Join(extract.ErrExtractionFailed, errors.New("bad bytes at /home/alice/notes.pdf")),
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "Failed to extract text from the input",
		},
		{
			name:       "blank extraction",
			fields:     map[string]string{"type": "basic", "method": "text", "text": "x"},
			text:       " \n\t ",
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "No text could be extracted from the input",
		},
		{
			name:       "all chunks failed",
			fields:     map[string]string{"type": "basic", "method": "text", "text": "x"},
			genErr:     &pipeline.AllChunksFailedError{},
			wantStatus: http.StatusBadGateway,
			wantMsg:    "Flashcard generation failed",
		},
		{
			name:       "client cancelled",
			fields:     map[string]string{"type": "basic", "method": "text", "text": "x"},
			genErr:     context.Canceled,
			wantStatus: shared.StatusClientClosedRequest,
		},
		{
			name:       "deadline exceeded",
			fields:     map[string]string{"type": "basic", "method": "text", "text": "x"},
			genErr:     context.DeadlineExceeded,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "unexpected error",
			fields:     map[string]string{"type": "basic", "method": "text", "text": "x"},
			genErr:     errors.New("boom: key=AIzaSyA-secret"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Failed to generate flashcards",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			text := tc.text
			if text == "" {
				text = "some extracted text"
			}
			ext := &fakeExtractor{text: text, err: tc.extractErr}
			gen := &fakeGenerator{err: tc.genErr}
			h := api.NewFlashcardHandler(ext, gen, nil, 0, discardLogger())

			rec := serve(http.HandlerFunc(h.Generate), multipartRequest(t, tc.fields, tc.file))
			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())

			var body shared.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, body.Error)
			}
			assert.Equal(t, rec.Header().Get(middleware.TraceIDHeader), body.TraceID)
			assert.NotContains(t, rec.Body.String(), "secret")
			assert.NotContains(t, rec.Body.String(), "/home/alice")
		})
	}
}

func TestGenerate_UploadTooLarge(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{}
	h := api.NewFlashcardHandler(&fakeExtractor{text: "x"}, gen, nil, 1024, discardLogger())

	req := multipartRequest(t, map[string]string{"type": "basic", "method": "pdf"},
		&filePart{name: "big.pdf", data: bytes.Repeat([]byte("x"), 4096)})
	rec := serve(http.HandlerFunc(h.Generate), req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, gen.invoked)
}

func TestGenerate_WithImages(t *testing.T) {
	t.Parallel()

	images := []domain.ImageRef{{Name: "a.png", Page: 1}, {Name: "b.png", Page: 2}}

	t.Run("images passed to generator", func(t *testing.T) {
		t.Parallel()

		var gotData []byte
		imageFn := func(_ context.Context, data []byte) ([]domain.ImageRef, error) {
			gotData = data
			return images, nil
		}
		gen := &fakeGenerator{}
		h := api.NewFlashcardHandler(&fakeExtractor{text: "x"}, gen, imageFn, 0, discardLogger())

		req := multipartRequest(t, map[string]string{"type": "illustrated", "method": "pdf", "with_images": "on"},
			&filePart{name: "deck.pdf", data: []byte("%PDF")})
		rec := serve(http.HandlerFunc(h.Generate), req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, []byte("%PDF"), gotData)
		require.Len(t, gen.images, 1)
		assert.Equal(t, images, gen.images[0])
	})

	t.Run("image failure is not fatal", func(t *testing.T) {
		t.Parallel()

		imageFn := func(context.Context, []byte) ([]domain.ImageRef, error) {
			return nil, errors.New("corrupt xref")
		}
		gen := &fakeGenerator{}
		h := api.NewFlashcardHandler(&fakeExtractor{text: "x"}, gen, imageFn, 0, discardLogger())

		req := multipartRequest(t, map[string]string{"type": "illustrated", "method": "pdf", "with_images": "true"},
			&filePart{name: "deck.pdf", data: []byte("%PDF")})
		rec := serve(http.HandlerFunc(h.Generate), req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Len(t, gen.images, 1)
		assert.Nil(t, gen.images[0])
	})
}

func TestGenerate_EndToEnd(t *testing.T) {
	t.Parallel()

	splitter, err := chunker.New(4, 0)
	require.NoError(t, err)
	orch, err := pipeline.NewOrchestrator(mocks.NewEchoGenerator(), pipeline.DefaultConfig(), discardLogger())
	require.NoError(t, err)
	svc, err := pipeline.NewService(splitter, orch, discardLogger())
	require.NoError(t, err)

	registry := extract.NewRegistry(extract.DefaultConfig(), discardLogger())
	h := api.NewFlashcardHandler(registry, svc, nil, 0, discardLogger())

	req := multipartRequest(t, map[string]string{"type": "basic", "method": "text", "text": "A. B. C."}, nil)
	rec := serve(http.HandlerFunc(h.Generate), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.FlashcardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.ChunkCount)
	require.Len(t, resp.Flashcards, 3)
	for i, card := range resp.Flashcards {
		assert.Equal(t, i, card.ChunkIndex)
		assert.Equal(t, domain.KindBasic, card.Kind)
	}
	assert.Empty(t, resp.Failures)
}
