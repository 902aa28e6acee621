// Package adminclient calls the admin REST surface with the bearer token
// kept in the local session blob. No call returns an error value: every
// failure is folded into Result.
package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"arogyam-go/internal/models"
)

// SessionKey is where the session blob lives in the local store.
const SessionKey = "arogyam.session"

// Result is the outcome of one admin call.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func fail[T any](format string, args ...interface{}) Result[T] {
	return Result[T]{Error: fmt.Sprintf(format, args...)}
}

// Session is the stored session blob.
type Session struct {
	AccessToken string `json:"access_token"`
}

// Blobs is the local key/value store holding the session blob.
type Blobs interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

type Client struct {
	baseURL string
	http    *http.Client
	blobs   Blobs
}

// New returns a client for baseURL. A nil httpClient uses
// http.DefaultClient; pass one whose transport is the offline cache to
// serve lists while disconnected.
func New(baseURL string, httpClient *http.Client, blobs Blobs) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, blobs: blobs}
}

// SaveSession stores the token returned by the login endpoint.
func (c *Client) SaveSession(token string) error {
	raw, err := json.Marshal(Session{AccessToken: token})
	if err != nil {
		return err
	}
	return c.blobs.Set(SessionKey, raw)
}

func (c *Client) ClearSession() error {
	return c.blobs.Remove(SessionKey)
}

func (c *Client) token() (string, error) {
	raw, ok, err := c.blobs.Get(SessionKey)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("malformed session: %w", err)
	}
	return s.AccessToken, nil
}

// Login exchanges credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) Result[string] {
	var body struct {
		Token string `json:"token"`
	}
	r := call(ctx, c, http.MethodPost, "/api/admin/login", map[string]string{"email": email, "password": password}, &body, false)
	if !r.Success {
		return Result[string]{Error: r.Error}
	}
	if err := c.SaveSession(body.Token); err != nil {
		return fail[string]("could not store session: %v", err)
	}
	return Result[string]{Success: true, Data: body.Token}
}

func (c *Client) ListConsultations(ctx context.Context) Result[[]models.Consultation] {
	var out []models.Consultation
	r := call(ctx, c, http.MethodGet, "/api/admin/consultations", nil, &out, true)
	return withData(r, out)
}

func (c *Client) UpdateConsultationStatus(ctx context.Context, id uint, status models.ConsultationStatus) Result[models.Consultation] {
	var out models.Consultation
	path := "/api/admin/consultations/" + strconv.FormatUint(uint64(id), 10)
	r := call(ctx, c, http.MethodPatch, path, map[string]models.ConsultationStatus{"status": status}, &out, true)
	return withData(r, out)
}

// LinkConsultation attaches a booking to a patient so it shows in their portal.
func (c *Client) LinkConsultation(ctx context.Context, id, patientID uint) Result[models.Consultation] {
	var out models.Consultation
	path := "/api/admin/consultations/" + strconv.FormatUint(uint64(id), 10) + "/patient"
	r := call(ctx, c, http.MethodPut, path, map[string]uint{"patient_id": patientID}, &out, true)
	return withData(r, out)
}

func (c *Client) DeleteConsultation(ctx context.Context, id uint) Result[struct{}] {
	path := "/api/admin/consultations/" + strconv.FormatUint(uint64(id), 10)
	return call(ctx, c, http.MethodDelete, path, nil, nil, true)
}

func (c *Client) ListPatients(ctx context.Context, query string) Result[[]models.Patient] {
	path := "/api/admin/patients"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var out []models.Patient
	r := call(ctx, c, http.MethodGet, path, nil, &out, true)
	return withData(r, out)
}

func (c *Client) ListPrescriptions(ctx context.Context, patientID uint) Result[[]models.Prescription] {
	path := "/api/admin/patients/" + strconv.FormatUint(uint64(patientID), 10) + "/prescriptions"
	var out []models.Prescription
	r := call(ctx, c, http.MethodGet, path, nil, &out, true)
	return withData(r, out)
}

func withData[T any](r Result[struct{}], data T) Result[T] {
	if !r.Success {
		return Result[T]{Error: r.Error}
	}
	return Result[T]{Success: true, Data: data}
}

// call performs one request and decodes a 2xx body into out.
func call(ctx context.Context, c *Client, method, path string, in, out interface{}, authed bool) Result[struct{}] {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fail[struct{}]("could not encode request: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fail[struct{}]("could not build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, err := c.token()
		if err != nil {
			return fail[struct{}]("could not read session: %v", err)
		}
		if token == "" {
			return fail[struct{}]("not signed in")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fail[struct{}]("network error: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail[struct{}]("could not read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return Result[struct{}]{Error: e.Error}
		}
		return fail[struct{}]("request failed with status %d", resp.StatusCode)
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fail[struct{}]("could not decode response: %v", err)
		}
	}
	return Result[struct{}]{Success: true}
}
