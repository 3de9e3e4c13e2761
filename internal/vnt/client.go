package vnt

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bgentry/go-netrc/netrc"
	"github.com/go-resty/resty/v2"
)

// DefaultEndpoint is the production API base URL.
const DefaultEndpoint = "https://legacy.vntt.app/api/v1"

// ErrProjectNotFound is returned when no project matches the given codename.
var ErrProjectNotFound = errors.New("project not found")

// Client talks to the translation service. It is safe for sequential use
// only; the sync engine is single-threaded by design.
type Client struct {
	endpoint string
	language string
	http     *resty.Client
}

// NewClient creates a client for the given API base URL, filtering all
// translation history to the given language code. Credentials from ~/.netrc
// (keyed by the endpoint host) are applied as basic auth when present;
// a missing netrc entry is not an error since public projects are readable
// anonymously.
func NewClient(endpoint, language string) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if language == "" {
		language = "en"
	}

	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		language: language,
		http:     resty.New().SetTimeout(60 * time.Second),
	}

	login, password, err := netrcCredentials(c.endpoint)
	if err != nil {
		return nil, err
	}
	if login != "" {
		c.http.SetBasicAuth(login, password)
	}

	return c, nil
}

// SetCredentials overrides any netrc-derived basic auth credentials.
func (c *Client) SetCredentials(login, password string) {
	c.http.SetBasicAuth(login, password)
}

// netrcCredentials looks up login/password for the endpoint's host in
// ~/.netrc. Returns empty strings when the file or machine entry is absent.
func netrcCredentials(endpoint string) (string, string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", nil
	}
	path := filepath.Join(home, ".netrc")
	if _, err := os.Stat(path); err != nil {
		return "", "", nil
	}

	rc, err := netrc.ParseFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse %s: %w", path, err)
	}

	machine := rc.FindMachine(u.Hostname())
	if machine == nil {
		return "", "", nil
	}
	return machine.Login, machine.Password, nil
}

// get performs a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	resp, err := c.http.R().SetContext(ctx).SetResult(out).Get(c.endpoint + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}

// ProjectID resolves a project codename to its numeric ID.
func (c *Client) ProjectID(ctx context.Context, codename string) (int64, error) {
	var projects []Project
	if err := c.get(ctx, "/projects.json", &projects); err != nil {
		return 0, fmt.Errorf("failed to list projects: %w", err)
	}

	for _, p := range projects {
		if p.Codename == codename {
			return p.ID, nil
		}
	}
	return 0, fmt.Errorf("no project with codename %q: %w", codename, ErrProjectNotFound)
}

// ScriptFiles lists all script files in a project.
func (c *Client) ScriptFiles(ctx context.Context, projectID int64) ([]ScriptFile, error) {
	var files []ScriptFile
	path := fmt.Sprintf("/projects/%d/script/files.json?limit=0", projectID)
	if err := c.get(ctx, path, &files); err != nil {
		return nil, fmt.Errorf("failed to list script files: %w", err)
	}
	return files, nil
}

// ScriptLines lists all lines of a script file, with each line's translation
// history filtered to the client's language. History order is preserved; the
// first remaining entry is the line's current translation.
func (c *Client) ScriptLines(ctx context.Context, fileID int64) ([]Line, error) {
	var lines []Line
	path := fmt.Sprintf("/project_files/%d/lines.json?limit=0", fileID)
	if err := c.get(ctx, path, &lines); err != nil {
		return nil, fmt.Errorf("failed to list script lines: %w", err)
	}

	for i := range lines {
		kept := lines[i].Translations[:0]
		for _, tr := range lines[i].Translations {
			if tr.Language.Code == c.language {
				kept = append(kept, tr)
			}
		}
		lines[i].Translations = kept
	}

	return lines, nil
}

// translationUpsert is the wire shape of one entry in the upload payload.
type translationUpsert struct {
	Line        lineRef  `json:"line"`
	Translation string   `json:"translation"`
	Language    Language `json:"language"`
}

type lineRef struct {
	ID int64 `json:"id"`
}

// SubmitTranslations posts a batch of translation upserts. The service
// appends each entry to the line's history as its new current translation.
func (c *Client) SubmitTranslations(ctx context.Context, updates []Update) error {
	payload := make([]translationUpsert, 0, len(updates))
	for _, u := range updates {
		payload = append(payload, translationUpsert{
			Line:        lineRef{ID: u.LineID},
			Translation: u.Translation,
			Language:    Language{Code: c.language},
		})
	}

	resp, err := c.http.R().SetContext(ctx).SetBody(payload).Post(c.endpoint + "/translations.json")
	if err != nil {
		return fmt.Errorf("failed to submit translations: %w", err)
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}
