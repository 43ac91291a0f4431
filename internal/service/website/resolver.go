package website

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"google.golang.org/api/idtoken"
)

const contactLookupPath = "/contact-lookup"

// WorkerContactResolver asks a people-search worker for the decision maker of
// a website. The worker answers {"data": {"first_name", "last_name",
// "position"}} or {"error": "..."}.
type WorkerContactResolver struct {
	client  HTTPClient
	baseURL string
}

// NewWorkerContactResolver builds a resolver for the worker at baseURL. With a
// nil client it tries an ID-token client for service-to-service calls and
// falls back to a plain client.
func NewWorkerContactResolver(client HTTPClient, baseURL string) (*WorkerContactResolver, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, eris.New("contact resolver: base URL is empty")
	}
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), baseURL)
		if err != nil {
			client = &http.Client{Timeout: 10 * time.Second}
		} else {
			client = idc
		}
	}
	return &WorkerContactResolver{client: client, baseURL: baseURL}, nil
}

type contactLookupResponse struct {
	Data *struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Position  string `json:"position"`
	} `json:"data"`
	Error string `json:"error"`
}

// ResolveContact implements ContactNameResolver. A 404 or an empty name means
// nobody was found.
func (r *WorkerContactResolver) ResolveContact(ctx context.Context, websiteURL string) (Contact, bool, error) {
	body, err := json.Marshal(map[string]string{"website": websiteURL})
	if err != nil {
		return Contact{}, false, eris.Wrap(err, "contact resolver: marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+contactLookupPath, bytes.NewReader(body))
	if err != nil {
		return Contact{}, false, eris.Wrap(err, "contact resolver: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Contact{}, false, eris.Wrap(err, "contact resolver: request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Contact{}, false, nil
	}

	var payload contactLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil && err != io.EOF {
		return Contact{}, false, eris.Wrap(err, "contact resolver: decode response")
	}
	if resp.StatusCode >= 400 {
		msg := payload.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return Contact{}, false, eris.Errorf("contact resolver: worker error: %s", msg)
	}
	if payload.Error != "" {
		return Contact{}, false, eris.Errorf("contact resolver: worker error: %s", payload.Error)
	}
	if payload.Data == nil {
		return Contact{}, false, nil
	}

	name := strings.TrimSpace(payload.Data.FirstName + " " + payload.Data.LastName)
	if name == "" {
		return Contact{}, false, nil
	}
	return Contact{Name: name, Title: strings.TrimSpace(payload.Data.Position)}, true, nil
}

var _ ContactNameResolver = (*WorkerContactResolver)(nil)
