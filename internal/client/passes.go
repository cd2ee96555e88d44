package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/passtools/passtools-go/internal/constants"
	http_internal "github.com/passtools/passtools-go/internal/http"
	"github.com/passtools/passtools-go/pkg/passtools"
)

// PassesClient implements the passtools.PassesClient interface.
type PassesClient struct {
	httpClient  *http_internal.Client
	logger      passtools.Logger
	concurrency int
}

// NewPassesClient creates a new PassesClient.
func NewPassesClient(httpClient *http_internal.Client, logger passtools.Logger, concurrency int) *PassesClient {
	if logger == nil {
		logger = passtools.NopLogger{}
	}

	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrencyLimit
	}

	return &PassesClient{
		httpClient:  httpClient,
		logger:      logger,
		concurrency: concurrency,
	}
}

func passPath(id int64) string {
	return constants.APIPathPass + "/" + strconv.FormatInt(id, 10)
}

// List retrieves all passes. An HTTP failure is returned as an error payload.
func (c *PassesClient) List(ctx context.Context) (passtools.RawResponse, error) {
	return c.read(ctx, "Pass.list", constants.APIPathPass)
}

// Show retrieves a specific pass. An HTTP failure is returned as an error payload.
func (c *PassesClient) Show(ctx context.Context, id int64) (passtools.RawResponse, error) {
	return c.read(ctx, "Pass.show", passPath(id))
}

// Create creates a pass from a template.
func (c *PassesClient) Create(ctx context.Context, id int64, attrs interface{}) (*passtools.WriteResult, error) {
	return c.write(ctx, &http_internal.Request{
		Method:    http.MethodPost,
		Path:      passPath(id),
		Body:      attrs,
		Operation: "Pass.create",
	})
}

// Update updates a pass.
func (c *PassesClient) Update(ctx context.Context, id int64, attrs interface{}) (*passtools.WriteResult, error) {
	return c.write(ctx, &http_internal.Request{
		Method:    http.MethodPut,
		Path:      passPath(id),
		Body:      attrs,
		Operation: "Pass.update",
	})
}

// Push pushes the current pass to the devices holding it.
func (c *PassesClient) Push(ctx context.Context, id int64) (*passtools.WriteResult, error) {
	return c.write(ctx, &http_internal.Request{
		Method:    http.MethodPut,
		Path:      passPath(id) + "/push",
		Operation: "Pass.push",
	})
}

// Delete deletes a pass.
func (c *PassesClient) Delete(ctx context.Context, id int64) (*passtools.WriteResult, error) {
	return c.write(ctx, &http_internal.Request{
		Method:    http.MethodDelete,
		Path:      passPath(id),
		Operation: "Pass.delete",
	})
}

// Download writes the pass bundle to <download dir>/PassToolsPass.pkpass and
// returns the path. The download directory is checked before the request.
func (c *PassesClient) Download(ctx context.Context, id int64) (string, error) {
	dir, err := c.httpClient.Settings().RequireDownloadDir()
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(ctx, &http_internal.Request{
		Method:    http.MethodGet,
		Path:      passPath(id) + "/download",
		Headers:   map[string]string{"Accept": "*/*"},
		Operation: "Pass.download",
	})
	if err != nil {
		return "", err
	}

	target := filepath.Join(dir, constants.DownloadFileName)

	err = writeFileAtomic(target, resp.Body)
	if err != nil {
		return "", fmt.Errorf("writing pass %d: %w", id, err)
	}

	c.logger.Info("Pass downloaded", map[string]interface{}{
		"id":    id,
		"path":  target,
		"bytes": len(resp.Body),
	})

	return target, nil
}

// BuildFromCurrent fetches a pass and wraps it. A failed fetch yields an
// invalid Pass carrying the error payload.
func (c *PassesClient) BuildFromCurrent(ctx context.Context, id int64) (*passtools.Pass, error) {
	raw, err := c.Show(ctx, id)
	if err != nil {
		return nil, err
	}

	return passtools.NewPass(raw), nil
}

// Save sends the pass's current field map back with Update.
func (c *PassesClient) Save(ctx context.Context, pass *passtools.Pass) (*passtools.WriteResult, error) {
	if pass == nil || !pass.Valid() || pass.ID() <= 0 {
		return nil, passtools.ErrInvalidPassID
	}

	return c.Update(ctx, pass.ID(), map[string]interface{}{
		"passFields": pass.PassFields(),
	})
}

// PushAll pushes several passes concurrently. Rejected pushes are reported
// in the results; a configuration or transport error stops the batch.
func (c *PassesClient) PushAll(ctx context.Context, ids []int64) (map[int64]*passtools.WriteResult, error) {
	if len(ids) == 0 {
		return nil, passtools.ErrNoPassIDs
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.concurrency)

	var mutex sync.Mutex

	results := make(map[int64]*passtools.WriteResult, len(ids))

	for _, id := range ids {
		group.Go(func() error {
			result, err := c.Push(groupCtx, id)
			if err != nil {
				return err
			}

			mutex.Lock()
			results[id] = result
			mutex.Unlock()

			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return results, fmt.Errorf("pushing passes: %w", err)
	}

	return results, nil
}

func (c *PassesClient) read(ctx context.Context, operation, path string) (passtools.RawResponse, error) {
	resp, err := c.httpClient.Do(ctx, &http_internal.Request{
		Method:    http.MethodGet,
		Path:      path,
		Operation: operation,
	})
	if err != nil {
		apiErr := &passtools.APIError{}
		if errors.As(err, &apiErr) {
			c.logger.Warn("Pass request failed", map[string]interface{}{
				"operation":   operation,
				"status_code": apiErr.StatusCode,
			})

			return apiErr.Payload(), nil
		}

		return nil, err
	}

	raw, err := resp.JSON()
	if err != nil {
		return nil, err
	}

	return raw, nil
}

func (c *PassesClient) write(ctx context.Context, req *http_internal.Request) (*passtools.WriteResult, error) {
	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		apiErr := &passtools.APIError{}
		if errors.As(err, &apiErr) {
			c.logger.Warn("Pass request failed", map[string]interface{}{
				"operation":   req.Operation,
				"status_code": apiErr.StatusCode,
			})

			return &passtools.WriteResult{StatusCode: apiErr.StatusCode, Error: apiErr}, nil
		}

		return nil, err
	}

	return &passtools.WriteResult{Success: true, StatusCode: resp.StatusCode}, nil
}

// writeFileAtomic writes data next to target and renames it into place, so
// a partial write is never visible under the final name.
func writeFileAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	_, err = tmp.Write(data)
	if err != nil {
		cleanup()

		return fmt.Errorf("writing temp file: %w", err)
	}

	err = tmp.Sync()
	if err != nil {
		cleanup()

		return fmt.Errorf("syncing temp file: %w", err)
	}

	err = tmp.Close()
	if err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("closing temp file: %w", err)
	}

	err = os.Chmod(tmpName, constants.DownloadFilePerm)
	if err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("setting file mode: %w", err)
	}

	err = os.Rename(tmpName, target)
	if err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
