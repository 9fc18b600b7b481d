// Package cursemeta talks to the CurseMeta mirror of the add-on metadata API.
package cursemeta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/minepkg/internal/constants"
	"github.com/meza/minepkg/internal/globalerrors"
	"github.com/meza/minepkg/internal/httpclient"
	"github.com/meza/minepkg/internal/models"
	"github.com/meza/minepkg/internal/perf"
)

type Client struct {
	client  httpclient.Doer
	baseURL string
}

func NewClient(doer httpclient.Doer, baseURL string) *Client {
	if baseURL == "" {
		baseURL = constants.DefaultMetadataURL
	}
	return &Client{client: doer, baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) GetAddOn(ctx context.Context, id uint32) (*models.Mod, error) {
	url := fmt.Sprintf("%s/api/v2/direct/GetAddOn/%d", c.baseURL, id)
	resource := fmt.Sprintf("addon %d", id)

	var mod models.Mod
	err := c.get(ctx, "api.cursemeta.addon", url, resource, &mod)
	if isNotFound(err) {
		return nil, &globalerrors.ModNotFoundError{Reference: fmt.Sprint(id), Provider: models.CURSE}
	}
	if err != nil {
		return nil, err
	}
	return &mod, nil
}

func (c *Client) GetAddOnFile(ctx context.Context, addOnID uint32, fileID uint32) (*models.ModFile, error) {
	url := fmt.Sprintf("%s/api/v2/direct/GetAddOnFile/%d/%d", c.baseURL, addOnID, fileID)
	resource := fmt.Sprintf("file %d of addon %d", fileID, addOnID)

	var file models.ModFile
	err := c.get(ctx, "api.cursemeta.file", url, resource, &file)
	if isNotFound(err) {
		return nil, &globalerrors.FileNotFoundError{ModID: addOnID, FileID: fileID}
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// FetchMod and FetchFile let the client serve as the resolver's metadata source.
func (c *Client) FetchMod(ctx context.Context, id uint32) (*models.Mod, error) {
	return c.GetAddOn(ctx, id)
}

func (c *Client) FetchFile(ctx context.Context, modID uint32, fileID uint32) (*models.ModFile, error) {
	return c.GetAddOnFile(ctx, modID, fileID)
}

var errNotFound = errors.New("not found")

func isNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

func (c *Client) get(ctx context.Context, spanName string, url string, resource string, target any) (returnErr error) {
	ctx, span := perf.StartSpan(ctx, spanName, perf.WithAttributes(attribute.String("url", url)))
	defer func() { span.EndWithError(returnErr) }()

	ctx, cancel := httpclient.WithMetadataTimeout(ctx)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return globalerrors.APIErrorWrap(errors.Wrap(err, "failed to build request"), resource, models.CURSE)
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.client.Do(request)
	if err != nil {
		return globalerrors.APIErrorWrap(httpclient.WrapTimeoutError(err), resource, models.CURSE)
	}
	defer response.Body.Close()

	span.SetAttributes(attribute.Int("status", response.StatusCode))
	if response.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if response.StatusCode != http.StatusOK {
		return globalerrors.APIErrorWrap(errors.Errorf("unexpected status code: %d", response.StatusCode), resource, models.CURSE)
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return globalerrors.APIErrorWrap(errors.Wrap(httpclient.WrapTimeoutError(err), "failed to decode response body"), resource, models.CURSE)
	}
	return nil
}
